package pullrequest

import "time"

type State string

const StateOpen State = "OPEN"

type EntityID string

type Entity struct {
	ID          EntityID
	Title       string
	Description string
	State       State
	Source      string
	Destination string
	CloseBranch bool
	URL         string
	Created     time.Time
	Updated     time.Time
}
