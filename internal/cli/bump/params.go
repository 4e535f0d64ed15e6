package bump

import (
	"fmt"
	"strings"

	"pkgbump/internal/cli/paramutils"
	"pkgbump/internal/configutils"
	"pkgbump/internal/domain"
	"pkgbump/internal/domain/update"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/gitutils"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type bumpCmdParams struct {
	Repository  string `validate:"required,ownerrepo"`
	Package     string `validate:"required"`
	Version     string `validate:"required"`
	Token       string
	Username    string
	Password    string
	GitName     string
	GitEmail    string `validate:"omitempty,email"`
	Destination string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ownerrepo", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseRepository(fl.Field().String())
		return err == nil
	})

	return v
}

// fieldErrors maps a failed field/tag pair to the error reported to the user.
var fieldErrors = map[string]error{
	"Repository.required":  errcodes.ErrMissingRepository,
	"Repository.ownerrepo": errcodes.ErrRepositoryMustBeInFormOwnerRepo,
	"Package.required":     errcodes.ErrMissingPackageName,
	"Version.required":     errcodes.ErrMissingPackageVersion,
	"GitEmail.email":       errcodes.ErrInvalidGitEmail,
}

func (params *bumpCmdParams) Validate() error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := verrs[0]
	if mapped, ok := fieldErrors[fe.Field()+"."+fe.Tag()]; ok {
		return errcodes.Validation(mapped)
	}

	return errcodes.Validation(fe)
}

// Request converts validated params into a pipeline request.
func (params *bumpCmdParams) Request(cfg *configutils.Config) (*update.Request, error) {
	repo, err := domain.ParseRepository(params.Repository)
	if err != nil {
		return nil, errcodes.Validation(err)
	}

	req := &update.Request{
		Repository: repo,
		Package:    strings.TrimSpace(params.Package),
		Version:    strings.TrimSpace(params.Version),
		Credential: update.Credential{
			Token:    params.Token,
			Username: params.Username,
			Password: params.Password,
		},
		Identity:          gitutils.Identity{Name: params.GitName, Email: params.GitEmail},
		Destination:       params.Destination,
		CloseSourceBranch: cfg.Bitbucket.CloseSourceBranch,
		DefaultReviewers:  cfg.Bitbucket.DefaultReviewers,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// warnOnVersion warns about versions npm would not understand. They are
// written to the manifest anyway.
func warnOnVersion(version string) {
	if _, err := semver.NewConstraint(version); err != nil {
		log.Warn().Err(err).Str("version", version).Msg("version is not a semver range")
	}
}

var (
	getOriginRemote   = gitutils.OriginRemote
	getGlobalIdentity = gitutils.GlobalIdentity
)

// fillDefaultParams takes the repository from the origin remote of the
// working directory and the git identity from the global git config.
func fillDefaultParams(wd string, params *bumpCmdParams) {
	if r, err := getOriginRemote(wd); err == nil {
		params.Repository = fmt.Sprintf("%s/%s", r.Workspace, r.Name)
	}

	if id, err := getGlobalIdentity(); err == nil {
		params.GitName = id.Name
		params.GitEmail = id.Email
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fillConfigParams(cfg *configutils.Config, params *bumpCmdParams) {
	setIfNotEmpty(&params.Token, cfg.Bitbucket.Token)
	setIfNotEmpty(&params.Username, cfg.Bitbucket.Username)
	setIfNotEmpty(&params.Password, cfg.Bitbucket.Password)
	setIfNotEmpty(&params.GitName, cfg.Git.Name)
	setIfNotEmpty(&params.GitEmail, cfg.Git.Email)
	setIfNotEmpty(&params.Destination, cfg.Destination)
}

// fillCredentialFlags treats the credential as one value: a token given on
// the command line drops a configured username and password, and the other
// way round. Both variants given on the command line still conflict.
func fillCredentialFlags(changed func(string) bool, params *bumpCmdParams) {
	token := changed("token")
	basic := changed("username") || changed("password")

	switch {
	case token && !basic:
		params.Username, params.Password = "", ""
	case basic && !token:
		params.Token = ""
	}
}

func fillFlagParams(flags paramutils.FlagRepo, params *bumpCmdParams) {
	params.Repository = flags.GetStringOrDefault("repo", params.Repository)
	params.Package = flags.GetStringOrDefault("pkg-name", params.Package)
	params.Version = flags.GetStringOrDefault("pkg-version", params.Version)
}

const (
	authToken = "token"
	authBasic = "username and password"
)

type interactiveAnswers struct {
	Repository string `survey:"repository"`
	Package    string `survey:"package"`
	Version    string `survey:"version"`
	Auth       string `survey:"auth"`
	Token      string `survey:"token"`
	Username   string `survey:"username"`
	Password   string `survey:"password"`
	GitName    string `survey:"gitName"`
	GitEmail   string `survey:"gitEmail"`
}

var ask = survey.Ask

func validateRepository(val interface{}) error {
	if err := survey.Required(val); err != nil {
		return err
	}

	_, err := domain.ParseRepository(fmt.Sprintf("%v", val))
	return err
}

func input(name, message, d string, v survey.Validator) *survey.Question {
	return &survey.Question{
		Name:     name,
		Prompt:   &survey.Input{Message: message, Default: d},
		Validate: v,
	}
}

func secret(name, message string) *survey.Question {
	return &survey.Question{
		Name:     name,
		Prompt:   &survey.Password{Message: message},
		Validate: survey.Required,
	}
}

// fillInteractiveParams prompts for every value still missing.
func fillInteractiveParams(params *bumpCmdParams) error {
	a := &interactiveAnswers{}

	var qs []*survey.Question
	if _, err := domain.ParseRepository(params.Repository); err != nil {
		qs = append(qs, input("repository", "Repository (workspace/repository)", params.Repository, validateRepository))
	}
	if params.Package == "" {
		qs = append(qs, input("package", "Package name", "", survey.Required))
	}
	if params.Version == "" {
		qs = append(qs, input("version", "Package version", "", survey.Required))
	}

	hasCredentials := params.Token != "" || (params.Username != "" && params.Password != "")
	if !hasCredentials {
		qs = append(qs, &survey.Question{
			Name: "auth",
			Prompt: &survey.Select{
				Message: "Authenticate with",
				Options: []string{authToken, authBasic},
				Default: authToken,
			},
		})
	}
	if params.GitName == "" {
		qs = append(qs, input("gitName", "Git user name", "", survey.Required))
	}
	if params.GitEmail == "" {
		qs = append(qs, input("gitEmail", "Git user email", "", survey.Required))
	}

	if len(qs) == 0 {
		return nil
	}
	if err := ask(qs, a); err != nil {
		return err
	}

	setIfNotEmpty(&params.Repository, a.Repository)
	setIfNotEmpty(&params.Package, a.Package)
	setIfNotEmpty(&params.Version, a.Version)
	setIfNotEmpty(&params.GitName, a.GitName)
	setIfNotEmpty(&params.GitEmail, a.GitEmail)

	if hasCredentials {
		return nil
	}

	switch a.Auth {
	case authBasic:
		qs = []*survey.Question{input("username", "Bitbucket username", params.Username, survey.Required), secret("password", "Bitbucket app password")}
	default:
		qs = []*survey.Question{secret("token", "Bitbucket access token")}
	}
	if err := ask(qs, a); err != nil {
		return err
	}

	if a.Auth == authBasic {
		params.Token = ""
		params.Username, params.Password = a.Username, a.Password
	} else {
		params.Username, params.Password = "", ""
		params.Token = a.Token
	}

	return nil
}
