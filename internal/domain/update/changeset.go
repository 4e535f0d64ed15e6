package update

import (
	"fmt"
	"regexp"
	"strings"

	"pkgbump/internal/manifest"

	"github.com/google/uuid"
)

var (
	nonVersionChars = regexp.MustCompile(`[^0-9-]`)
	// characters git refuses in branch names
	invalidRefChars = regexp.MustCompile(`[\s~^:?*\[\\]|\.\.|@\{`)
)

// ChangeSet names one pending update. Every ChangeSet gets a fresh branch.
type ChangeSet struct {
	Branch        string
	CommitMessage string
	Title         string
	Description   string
}

var newSuffix = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// VersionToken turns a version into a branch name fragment: dots become
// dashes and every other character that is not a digit or dash is dropped.
func VersionToken(version string) string {
	return nonVersionChars.ReplaceAllString(strings.ReplaceAll(version, ".", "-"), "")
}

func NewChangeSet(pkg, version string, change manifest.Change) ChangeSet {
	action, prefix := "added", "pkg-add"
	msg := fmt.Sprintf("Package added %s %s", pkg, version)
	if change.Changed && !change.Inserted {
		action, prefix = "updated", "pkg-update"
		msg = fmt.Sprintf("Package updated %s %s -> %s", pkg, change.Previous, version)
	}

	branch := fmt.Sprintf("%s-%s-%s-%s",
		prefix,
		invalidRefChars.ReplaceAllString(pkg, "-"),
		VersionToken(version),
		newSuffix(),
	)

	return ChangeSet{
		Branch:        branch,
		CommitMessage: msg,
		Title:         msg,
		Description:   fmt.Sprintf("Package %s %s %s", pkg, version, action),
	}
}
