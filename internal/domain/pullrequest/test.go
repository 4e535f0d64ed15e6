package pullrequest

import (
	"context"

	"pkgbump/internal/domain"
)

type MockPullRequestRepository struct {
	DefaultBranchValue string
	DefaultBranchErr   error
	CreateErr          error

	DefaultBranchCalls int
	Created            []*CreateOptions
	HadDeadline        bool
}

func (m *MockPullRequestRepository) DefaultBranch(ctx context.Context, repo domain.Repository) (string, error) {
	m.DefaultBranchCalls++
	return m.DefaultBranchValue, m.DefaultBranchErr
}

func (m *MockPullRequestRepository) Create(ctx context.Context, o *CreateOptions) (*Entity, error) {
	_, m.HadDeadline = ctx.Deadline()
	m.Created = append(m.Created, o)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	return &Entity{
		ID:          "1",
		Title:       o.Title,
		Description: o.Description,
		State:       StateOpen,
		Source:      o.Source,
		Destination: o.Destination,
		URL:         "https://bitbucket.org/" + o.Repository.String() + "/pull-requests/1",
	}, nil
}
