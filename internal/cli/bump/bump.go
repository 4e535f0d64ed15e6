package bump

import (
	"context"
	"io"
	"os"
	"time"

	"pkgbump/internal/cli/paramutils"
	"pkgbump/internal/clientutils"
	"pkgbump/internal/configutils"
	"pkgbump/internal/domain/update"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/persistance"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys binds flags to the config keys they override.
var flagKeys = map[string]string{
	"token":               configutils.KeyToken,
	"username":            configutils.KeyUsername,
	"password":            configutils.KeyPassword,
	"git-name":            configutils.KeyGitName,
	"git-email":           configutils.KeyGitEmail,
	"destination":         configutils.KeyDestination,
	"workdir":             configutils.KeyWorkdir,
	"timeout":             configutils.KeyTimeout,
	"transport":           configutils.KeyGitTransport,
	"close-source-branch": configutils.KeyCloseBranch,
	"default-reviewers":   configutils.KeyDefaultReviewers,
}

// SetUpFlags registers the flags of an update run on cmd.
func SetUpFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("repo", "r", "", "repository in the form workspace/repository (default origin of the working directory)")
	f.String("pkg-name", "", "name of the package to add or update")
	f.String("pkg-version", "", "version of the package")
	f.String("token", "", "Bitbucket access token")
	f.String("username", "", "Bitbucket username")
	f.String("password", "", "Bitbucket app password")
	f.String("git-name", "", "author name of the commit (default from git config)")
	f.String("git-email", "", "author email of the commit (default from git config)")
	f.StringP("destination", "d", "", "destination branch of the pull request (default main branch)")
	f.String("workdir", "", "directory the repository is cloned into")
	f.Duration("timeout", 0, "timeout of each network operation")
	f.StringP("config", "c", "", "additional config file")
	f.BoolP("interactive", "i", false, "prompt for missing values")
	f.String("transport", "", "git transport, ssh or https")
	f.Bool("close-source-branch", false, "close the branch when the pull request is merged")
	f.Bool("default-reviewers", false, "add the repository's default reviewers")
}

var (
	getwd          = os.Getwd
	loadConfig     = configutils.LoadConfigForPath
	newContainer   = clientutils.NewContainer
	stdout         = io.Writer(os.Stdout)
	stderr         = io.Writer(os.Stderr)
	interactiveAsk = fillInteractiveParams
)

func loadSettings(cmd *cobra.Command, wd string) (*configutils.Config, error) {
	v, err := loadConfig(wd)
	if err != nil {
		return nil, err
	}

	flags := paramutils.NewFlagRepo(cmd.Flags())
	if f := flags.GetStringOrDefault("config", ""); f != "" {
		if err := configutils.MergeConfigFile(v, f); err != nil {
			return nil, err
		}
	}

	return settingsFromViper(v, cmd)
}

func settingsFromViper(v *viper.Viper, cmd *cobra.Command) (*configutils.Config, error) {
	if err := paramutils.BindFlags(v, cmd.Flags(), flagKeys); err != nil {
		return nil, err
	}

	cfg, err := configutils.Load(v)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		return nil, errcodes.Validation(errcodes.ErrInvalidTimeout)
	}

	cfg.Workdir, err = homedir.Expand(cfg.Workdir)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func buildRequest(cmd *cobra.Command, wd string, cfg *configutils.Config) (*update.Request, error) {
	flags := paramutils.NewFlagRepo(cmd.Flags())

	params := &bumpCmdParams{}
	fillDefaultParams(wd, params)
	fillConfigParams(cfg, params)
	fillFlagParams(flags, params)
	fillCredentialFlags(cmd.Flags().Changed, params)

	if flags.GetBoolOrDefault("interactive", false) {
		if err := interactiveAsk(params); err != nil {
			return nil, err
		}
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	warnOnVersion(params.Version)

	return params.Request(cfg)
}

// RunCmd updates one package in one repository and opens a pull request
// for the change.
func RunCmd(cmd *cobra.Command, _ []string) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd, wd)
	if err != nil {
		return err
	}

	req, err := buildRequest(cmd, wd, cfg)
	if err != nil {
		return err
	}

	c, err := newContainer(&clientutils.Settings{Config: cfg, Request: req})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return c.Invoke(func(p *update.Pipeline, h persistance.PersistanceRepo) error {
		return execute(ctx, p, h, req, stdout, stderr)
	})
}

type runner interface {
	SetListener(update.Listener)
	Run(context.Context, *update.Request) *update.Outcome
}

func execute(
	ctx context.Context,
	p runner,
	h persistance.PersistanceRepo,
	req *update.Request,
	out, errOut io.Writer,
) error {
	p.SetListener(newProgress(errOut))

	o := p.Run(ctx, req)

	if err := h.AddRun(runInfo(req, o)); err != nil {
		log.Warn().Err(err).Msg("could not record run")
	}

	printSummary(out, req, o)

	return o.AsError()
}

func runInfo(req *update.Request, o *update.Outcome) *persistance.RunInfo {
	ri := &persistance.RunInfo{
		Repository: req.Repository.String(),
		Package:    req.Package,
		Version:    req.Version,
		Status:     string(o.Status),
		Time:       time.Now(),
	}
	if o.Change.Changed && !o.Change.Inserted {
		ri.Previous = o.Change.Previous
	}
	if o.ChangeSet != nil {
		ri.Branch = o.ChangeSet.Branch
	}
	if o.PullRequest != nil {
		ri.PullRequest = o.PullRequest.URL
	}
	if o.Err != nil {
		ri.Error = o.Err.Error()
	}

	return ri
}
