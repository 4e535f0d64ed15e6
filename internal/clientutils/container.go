package clientutils

import (
	"pkgbump/internal/configutils"
	"pkgbump/internal/domain/pullrequest"
	"pkgbump/internal/domain/update"
	"pkgbump/internal/gitutils"
	"pkgbump/internal/manifest"
	"pkgbump/internal/persistance"
	"pkgbump/internal/pkg/bitbucket"
	"pkgbump/internal/pkg/fs"
	"pkgbump/internal/workspace"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"
	"go.uber.org/dig"
)

// Settings is everything the collaborators of a run are built from.
type Settings struct {
	Config  *configutils.Config
	Request *update.Request
}

// NewContainer wires the collaborators of the update pipeline.
func NewContainer(s *Settings) (*dig.Container, error) {
	c := dig.New()

	providers := []interface{}{
		func() *Settings { return s },
		ProvideGitAuth,
		ProvideWorkspaces,
		ProvideManifests,
		ProvideSubmitter,
		ProvideBitbucketClient,
		ProvidePublisher,
		ProvidePipeline,
		persistance.GetRepo,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, errors.Wrap(err, "cannot build container")
		}
	}

	return c, nil
}

var sshAuth = gitutils.SSHAuth

func ProvideGitAuth(s *Settings) (transport.AuthMethod, error) {
	t, err := workspace.ParseTransport(s.Config.Git.Transport)
	if err != nil {
		return nil, err
	}

	if t == workspace.TransportSSH {
		auth, err := sshAuth(s.Config.Git.SSHKey, s.Config.Git.SSHKeyPassphrase)
		if err != nil {
			return nil, errors.Wrap(err, "cannot set up ssh authentication")
		}
		return auth, nil
	}

	cred := s.Request.Credential
	if cred.IsToken() {
		return gitutils.TokenAuth(cred.Token), nil
	}

	return gitutils.BasicAuth(cred.Username, cred.Password), nil
}

func ProvideWorkspaces(s *Settings, auth transport.AuthMethod) (*workspace.Manager, error) {
	t, err := workspace.ParseTransport(s.Config.Git.Transport)
	if err != nil {
		return nil, err
	}

	return workspace.NewManager(s.Config.Workdir, s.Config.Bitbucket.Host, t, auth, s.Config.Timeout), nil
}

func ProvideManifests() *manifest.Store {
	return manifest.NewStore(fs.OS())
}

func ProvideSubmitter(s *Settings, auth transport.AuthMethod) *gitutils.Submitter {
	return gitutils.NewSubmitter(s.Request.Identity, auth, s.Config.Timeout)
}

func ProvideBitbucketClient(s *Settings) (*bitbucket.BitbucketCloudClient, error) {
	cred := s.Request.Credential

	return bitbucket.New(&bitbucket.ClientOptions{
		BaseURL:  s.Config.Bitbucket.APIURL,
		Token:    cred.Token,
		Username: cred.Username,
		Password: cred.Password,
	})
}

func ProvidePublisher(s *Settings, c *bitbucket.BitbucketCloudClient) *pullrequest.CreateService {
	return pullrequest.NewCreateService(c, s.Config.Timeout)
}

func ProvidePipeline(
	w *workspace.Manager,
	m *manifest.Store,
	sub *gitutils.Submitter,
	p *pullrequest.CreateService,
) *update.Pipeline {
	return update.NewPipeline(w, m, sub, p)
}
