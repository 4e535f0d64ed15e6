package update

import (
	"strings"

	"pkgbump/internal/domain"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/gitutils"
)

// Credential authenticates against Bitbucket with either a token or a
// username and password, never both.
type Credential struct {
	Token    string
	Username string
	Password string
}

func (c Credential) Validate() error {
	hasToken := c.Token != ""
	hasBasic := c.Username != "" || c.Password != ""

	switch {
	case hasToken && hasBasic:
		return errcodes.ErrConflictingCredentials
	case hasToken:
		return nil
	case !hasBasic:
		return errcodes.ErrMissingCredentials
	case c.Username == "":
		return errcodes.ErrMissingUsername
	case c.Password == "":
		return errcodes.ErrMissingPassword
	}

	return nil
}

func (c Credential) IsToken() bool {
	return c.Token != ""
}

// Request is everything a single update run needs. It is not modified once
// validated.
type Request struct {
	Repository domain.Repository
	Package    string
	Version    string
	Credential Credential
	Identity   gitutils.Identity
	// Destination is the target branch of the pull request. Empty means the
	// repository's main branch.
	Destination       string
	CloseSourceBranch bool
	DefaultReviewers  bool
}

func (r *Request) Validate() error {
	if err := r.validate(); err != nil {
		return errcodes.Validation(err)
	}

	return nil
}

func (r *Request) validate() error {
	if r.Repository.IsZero() {
		return errcodes.ErrMissingRepository
	}
	if _, err := domain.ParseRepository(r.Repository.String()); err != nil {
		return err
	}
	if strings.TrimSpace(r.Package) == "" {
		return errcodes.ErrMissingPackageName
	}
	if strings.TrimSpace(r.Version) == "" {
		return errcodes.ErrMissingPackageVersion
	}
	if err := r.Credential.Validate(); err != nil {
		return err
	}
	if r.Identity.Name == "" {
		return errcodes.ErrMissingGitName
	}
	if r.Identity.Email == "" {
		return errcodes.ErrMissingGitEmail
	}

	return nil
}
