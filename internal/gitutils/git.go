package gitutils

import (
	"context"
	"fmt"

	"pkgbump/internal/errcodes"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	RemoteName = "origin"

	// tokenUser is the username Bitbucket expects for token authentication
	// over HTTPS.
	tokenUser = "x-token-auth"
)

var ErrMissingIdentity = errors.New("git identity is incomplete")

type Identity struct {
	Name  string
	Email string
}

func (i Identity) Complete() bool {
	return i.Name != "" && i.Email != ""
}

var openRepo = func(dir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
}

var plainClone = func(ctx context.Context, dir string, o *git.CloneOptions) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, dir, false, o)
}

var plainInit = func(dir string) (*git.Repository, error) {
	return git.PlainInit(dir, false)
}

var loadGlobalConfig = func() (*config.Config, error) {
	return config.LoadConfig(config.GlobalScope)
}

// GlobalIdentity reads user.name and user.email from the user's global git
// configuration. The configuration is never written.
func GlobalIdentity() (Identity, error) {
	cfg, err := loadGlobalConfig()
	if err != nil {
		return Identity{}, errors.Wrap(err, "cannot read global git config")
	}

	return Identity{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

// SSHAuth authenticates with the key at keyPath or, when keyPath is empty,
// with the running ssh agent.
func SSHAuth(keyPath, passphrase string) (transport.AuthMethod, error) {
	if keyPath == "" {
		return ssh.NewSSHAgentAuth("git")
	}

	p, err := homedir.Expand(keyPath)
	if err != nil {
		return nil, err
	}

	return ssh.NewPublicKeysFromFile("git", p, passphrase)
}

func TokenAuth(token string) transport.AuthMethod {
	return &http.BasicAuth{Username: tokenUser, Password: token}
}

func BasicAuth(username, password string) transport.AuthMethod {
	return &http.BasicAuth{Username: username, Password: password}
}

// Clone clones url into dir. Cloning an empty remote yields a fresh
// repository with origin pointing at url, as the git CLI does.
func Clone(ctx context.Context, url, dir string, auth transport.AuthMethod) error {
	_, err := plainClone(ctx, dir, &git.CloneOptions{
		URL:        url,
		Auth:       auth,
		RemoteName: RemoteName,
	})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		err = initEmpty(url, dir)
	}
	if err != nil {
		return errcodes.Transport("clone", errors.Wrap(err, url))
	}

	return nil
}

func initEmpty(url, dir string) error {
	r, err := plainInit(dir)
	if err != nil {
		return err
	}

	_, err = r.CreateRemote(&config.RemoteConfig{
		Name: RemoteName,
		URLs: []string{url},
	})

	return err
}

func branchRefSpec(branch string) config.RefSpec {
	return config.RefSpec(fmt.Sprintf("refs/heads/%[1]s:refs/heads/%[1]s", branch))
}
