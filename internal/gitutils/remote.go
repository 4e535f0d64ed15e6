package gitutils

import (
	"regexp"

	"github.com/pkg/errors"
)

var (
	ErrCannotGetLocalRepository         = errors.New("cannot get local repository")
	ErrUnableToParseRemoteRepositoryURI = errors.New("unable to parse remote repository URI")
	ErrNoRemotes                        = errors.New("repository has no remotes")
)

var remoteURIPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git@([^:]+):([^/]+)/([^/]+?)(?:\.git)?$`),
	regexp.MustCompile(`^ssh://(?:[^@/]+@)?([^/:]+)(?::\d+)?/([^/]+)/([^/]+?)(?:\.git)?$`),
	regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/([^/]+?)(?:\.git)?/?$`),
}

// Remote identifies a hosted repository.
type Remote struct {
	Host      string
	Workspace string
	Name      string
}

var extractRepositoryTokens = func(uri string) ([]string, error) {
	for _, p := range remoteURIPatterns {
		if m := p.FindStringSubmatch(uri); len(m) == 4 {
			return m[1:], nil
		}
	}

	return nil, ErrUnableToParseRemoteRepositoryURI
}

func ParseRemote(uri string) (*Remote, error) {
	m, err := extractRepositoryTokens(uri)
	if err != nil {
		return nil, err
	}

	return &Remote{Host: m[0], Workspace: m[1], Name: m[2]}, nil
}

// OriginRemote returns the repository the origin remote of the checkout at
// dir points to, falling back to the first remote configured.
func OriginRemote(dir string) (*Remote, error) {
	r, err := openRepo(dir)
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	remotes, err := r.Remotes()
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	var urls []string
	for _, re := range remotes {
		if re.Config().Name == RemoteName {
			urls = append(append([]string{}, re.Config().URLs...), urls...)
			continue
		}
		urls = append(urls, re.Config().URLs...)
	}

	if len(urls) == 0 {
		return nil, ErrNoRemotes
	}

	return ParseRemote(urls[0])
}
