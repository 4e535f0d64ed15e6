package update

import (
	"pkgbump/internal/domain/pullrequest"
	"pkgbump/internal/errcodes"
	"pkgbump/internal/manifest"
)

type Status string

const (
	StatusOK     Status = "ok"
	StatusNoOp   Status = "no-op"
	StatusFailed Status = "failed"
)

type Outcome struct {
	Status Status
	// Err is set when Status is StatusFailed.
	Err *errcodes.Error
	// FailedIn is the last state reached before the failure.
	FailedIn    State
	Change      manifest.Change
	ChangeSet   *ChangeSet
	PullRequest *pullrequest.Entity
	FinalState  State
}

// AsError returns Err as an error, nil when the run did not fail.
func (o *Outcome) AsError() error {
	if o.Err == nil {
		return nil
	}

	return o.Err
}
