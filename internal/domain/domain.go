package domain

import (
	"strings"

	"pkgbump/internal/errcodes"
)

// Repository identifies a Bitbucket repository as workspace/name.
type Repository struct {
	Workspace string
	Name      string
}

func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || !validPart(parts[0]) || !validPart(parts[1]) {
		return Repository{}, errcodes.ErrRepositoryMustBeInFormOwnerRepo
	}

	return Repository{Workspace: parts[0], Name: parts[1]}, nil
}

func validPart(s string) bool {
	return s != "" && s != "." && s != ".."
}

func (r Repository) String() string {
	return r.Workspace + "/" + r.Name
}

func (r Repository) IsZero() bool {
	return r.Workspace == "" && r.Name == ""
}
