// Package gitref parses and validates the label a request or scheduler
// tick resolves against a Git repository: a branch name, a tag name, or
// a raw commit SHA.
package gitref

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies which variant a Ref holds.
type Kind int

const (
	KindBranch Kind = iota
	KindTag
	KindCommit
)

// Ref is a resolved, tagged Git reference.
type Ref struct {
	Kind Kind
	Name string
}

func Branch(name string) Ref { return Ref{Kind: KindBranch, Name: name} }
func Tag(name string) Ref    { return Ref{Kind: KindTag, Name: name} }
func Commit(sha string) Ref  { return Ref{Kind: KindCommit, Name: sha} }

var hexSHA = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// Parse classifies a label string into its Ref variant:
//   - a 40-character hex string is a Commit
//   - "refs/tags/<name>" or "tags/<name>" is a Tag
//   - "refs/heads/<name>" or any other bare name is a Branch
func Parse(label string) Ref {
	switch {
	case hexSHA.MatchString(label):
		return Commit(label)
	case strings.HasPrefix(label, "refs/tags/"):
		return Tag(strings.TrimPrefix(label, "refs/tags/"))
	case strings.HasPrefix(label, "tags/"):
		return Tag(strings.TrimPrefix(label, "tags/"))
	case strings.HasPrefix(label, "refs/heads/"):
		return Branch(strings.TrimPrefix(label, "refs/heads/"))
	default:
		return Branch(label)
	}
}

// invalidChars is the character class rejected in ref names, beyond
// control characters: space, ~, ^, :, ?, *, [.
const invalidChars = " ~^:?*["

// Validate rejects empty names, leading/trailing '/', '..', '//',
// control characters, and the invalidChars class.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("gitref: empty ref name")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("gitref: ref name %q has leading or trailing slash", name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("gitref: ref name %q contains '..'", name)
	}
	if strings.Contains(name, "//") {
		return fmt.Errorf("gitref: ref name %q contains '//'", name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("gitref: ref name %q contains a control character", name)
		}
	}
	if strings.ContainsAny(name, invalidChars) {
		return fmt.Errorf("gitref: ref name %q contains an invalid character", name)
	}
	return nil
}

// String renders the ref in its canonical label form.
func (r Ref) String() string {
	switch r.Kind {
	case KindTag:
		return "refs/tags/" + r.Name
	case KindCommit:
		return r.Name
	default:
		return r.Name
	}
}
