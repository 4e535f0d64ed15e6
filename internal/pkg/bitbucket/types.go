package bitbucket

import (
	"time"

	"pkgbump/internal/domain/pullrequest"
)

type bbPRBranchOptions struct {
	Name string `json:"name,omitempty"`
}

type bbPRSourceOptions struct {
	Branch bbPRBranchOptions `json:"branch,omitempty"`
}

type bbPROptionsReviewer struct {
	UUID string `json:"uuid"`
}

type bbPROptions struct {
	Title             string                `json:"title"`
	Description       string                `json:"description,omitempty"`
	Source            bbPRSourceOptions     `json:"source"`
	Destination       bbPRSourceOptions     `json:"destination,omitempty"`
	CloseSourceBranch bool                  `json:"close_source_branch"`
	Reviewers         []bbPROptionsReviewer `json:"reviewers,omitempty"`
}

type bbError struct {
	Type  string `json:"type"`
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
}

type bitbucketPullRequest struct {
	ID          int
	Title       string
	Description string
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
	State       pullrequest.State
	Links       struct {
		HTML struct {
			Href string
		}
	}
	Destination struct {
		Branch struct {
			Name string
		}
	}
	Source struct {
		Branch struct {
			Name string
		}
	}
	CloseSourceBranch bool `json:"close_source_branch"`
}

// Reviewer is a default reviewer of a repository.
type Reviewer struct {
	DisplayName string `json:"display_name"`
	UUID        string `json:"uuid"`
}
