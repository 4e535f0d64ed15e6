package bump

import (
	"fmt"
	"io"

	"pkgbump/internal/domain/update"

	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
)

var stateMessages = map[update.State]string{
	update.StateInit:            "Preparing workspace...",
	update.StateCloned:          "Repository cloned",
	update.StateManifestRead:    "Manifest read",
	update.StateNoOp:            "Package already at the requested version",
	update.StateManifestUpdated: "Manifest updated",
	update.StateCommitted:       "Changes committed",
	update.StatePushed:          "Branch pushed",
	update.StatePublished:       "Pull request created",
	update.StateCleaningUp:      "Cleaning up...",
	update.StateDone:            "Done",
	update.StateFailed:          "Failed",
}

// progress rewrites a single status line on every transition and leaves the
// final state on screen.
type progress struct {
	w *uilive.Writer
}

func newProgress(out io.Writer) *progress {
	w := uilive.New()
	w.Out = out

	return &progress{w: w}
}

func (p *progress) Transition(s update.State) {
	msg, ok := stateMessages[s]
	if !ok {
		msg = string(s)
	}

	if s.Terminal() {
		fmt.Fprintln(p.w.Bypass(), msg)
		return
	}

	fmt.Fprintln(p.w, msg)
	_ = p.w.Flush()
}

func printSummary(out io.Writer, req *update.Request, o *update.Outcome) {
	table := uitable.New()

	table.AddRow("REPOSITORY", req.Repository.String())
	table.AddRow("PACKAGE", req.Package)

	version := req.Version
	if o.Change.Changed && !o.Change.Inserted {
		version = fmt.Sprintf("%s -> %s", o.Change.Previous, req.Version)
	}
	table.AddRow("VERSION", version)
	table.AddRow("STATUS", string(o.Status))

	if o.ChangeSet != nil && o.ChangeSet.Branch != "" {
		table.AddRow("BRANCH", o.ChangeSet.Branch)
	}
	if o.PullRequest != nil {
		table.AddRow("PULL REQUEST", o.PullRequest.URL)
	}
	if o.Err != nil {
		table.AddRow("FAILED IN", string(o.FailedIn))
		table.AddRow("ERROR", o.Err.Error())
	}

	fmt.Fprintln(out, table.String())
}
