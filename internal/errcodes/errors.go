package errcodes

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingRepository               = errors.New("repository is missing")
	ErrMissingPackageName              = errors.New("package name is missing")
	ErrMissingPackageVersion           = errors.New("package version is missing")
	ErrMissingCredentials              = errors.New("either a token or a username and password are required")
	ErrConflictingCredentials          = errors.New("token and username/password are mutually exclusive")
	ErrMissingUsername                 = errors.New("bitbucket username is missing")
	ErrMissingPassword                 = errors.New("bitbucket password is missing")
	ErrMissingGitName                  = errors.New("git user name is missing")
	ErrMissingGitEmail                 = errors.New("git user email is missing")
	ErrRepositoryMustBeInFormOwnerRepo = errors.New("repository must be in the form of 'workspace/repository'")
	ErrInvalidGitEmail                 = errors.New("git user email is not a valid address")
	ErrInvalidTimeout                  = errors.New("timeout must be positive")
)

// Kind classifies every failure the update pipeline can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindTransport
	KindManifestFormat
	KindPublish
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindTransport:
		return "TransportError"
	case KindManifestFormat:
		return "ManifestFormatError"
	case KindPublish:
		return "PublishError"
	}

	return "UnknownError"
}

type Error struct {
	Kind Kind
	// Op names the step that failed, e.g. "clone" or "push".
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Cause() error { return e.Err }

func newError(k Kind, op string, err error) *Error {
	if err == nil {
		err = errors.New("unspecified failure")
	}

	return &Error{Kind: k, Op: op, Err: err}
}

func Validation(err error) *Error {
	return newError(KindValidation, "", err)
}

func Transport(op string, err error) *Error {
	return newError(KindTransport, op, err)
}

func ManifestFormat(op string, err error) *Error {
	return newError(KindManifestFormat, op, err)
}

func Publish(op string, err error) *Error {
	return newError(KindPublish, op, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Classify keeps an already classified error untouched and wraps anything
// else with the given kind.
func Classify(k Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return newError(k, op, err)
}
