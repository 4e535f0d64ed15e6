package update

type State string

const (
	StateInit            State = "init"
	StateCloned          State = "cloned"
	StateManifestRead    State = "manifest-read"
	StateNoOp            State = "no-op"
	StateManifestUpdated State = "manifest-updated"
	StateCommitted       State = "committed"
	StatePushed          State = "pushed"
	StatePublished       State = "published"
	StateCleaningUp      State = "cleaning-up"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Listener is told about every state the pipeline enters.
type Listener interface {
	Transition(State)
}

type ListenerFunc func(State)

func (f ListenerFunc) Transition(s State) { f(s) }
