// Package branch implements the branch-name wire format and the
// reconciliation of store state against observed branch names.
//
// Branch names are the only cross-process signaling channel between
// distributed agents, so encoding and recognition live in this single
// package to keep the two from drifting apart.
package branch

import (
	"fmt"
	"regexp"
	"strings"
)

// Prefix is the namespace for work branches.
const Prefix = "feature/"

// namePattern matches feature/<areaId>-<agentId>. The area id is the
// uppercase <CATEGORY>-<sequence> form; everything after its trailing
// dash is the agent id.
var namePattern = regexp.MustCompile(`^feature/([A-Z][A-Z0-9]*-\d+)-(.+)$`)

// Name builds the work branch name for an area/agent pair.
func Name(areaID, agentID string) string {
	return fmt.Sprintf("%s%s-%s", Prefix, areaID, agentID)
}

// Parse extracts the area and agent ids from a branch name. It accepts
// the raw forms git emits when listing branches: a leading "* " marker,
// surrounding whitespace, and "origin/" or "remotes/origin/" prefixes.
// Symbolic-ref lines ("origin/HEAD -> origin/main") and names outside
// the feature/ namespace report ok=false.
func Parse(name string) (areaID, agentID string, ok bool) {
	s := strings.TrimSpace(name)
	s = strings.TrimPrefix(s, "* ")
	s = strings.TrimSpace(s)

	if strings.Contains(s, "->") {
		return "", "", false
	}

	s = strings.TrimPrefix(s, "remotes/")
	if i := strings.Index(s, "/"); i >= 0 && !strings.HasPrefix(s, Prefix) {
		// Remote-qualified name: drop the remote component.
		s = s[i+1:]
	}

	m := namePattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
