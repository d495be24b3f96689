package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Revision is a dotted-numeric RCS/CVS revision identity, e.g. "1.2.4.1".
// A Revision is immutable once parsed; comparisons and predicates operate
// directly on the parsed integer sequence rather than the string form.
type Revision []int

// parseRevision parses a dotted-numeric revision string such as "1.4" or
// "1.2.2.3". The sequence must have at least two components.
func parseRevision(s string) (Revision, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("revision %q has fewer than two components", s)
	}
	rev := make(Revision, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("revision %q: component %q is not a non-negative integer", s, p)
		}
		rev[i] = n
	}
	return rev, nil
}

// mustParseRevision is for use with string literals known to be well-formed,
// e.g. the trunk-seed "1.1" used by the introduce-1.1 planner option.
func mustParseRevision(s string) Revision {
	rev, err := parseRevision(s)
	if err != nil {
		panic(err)
	}
	return rev
}

func (r Revision) String() string {
	parts := make([]string, len(r))
	for i, n := range r {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// IsTrunk reports whether r names a trunk revision (length 2, e.g. "1.4").
func (r Revision) IsTrunk() bool {
	return len(r) == 2
}

// IsBranch reports whether r names a branch itself (odd length), as opposed
// to a revision that lives on a branch.
func (r Revision) IsBranch() bool {
	return len(r)%2 == 1
}

// IsMagicBranch reports whether r is CVS's "magic branch" encoding: an even
// length of at least 4 whose next-to-last component is 0. This is how CVS
// names a branch tag whose revisions do not yet exist on disk.
func (r Revision) IsMagicBranch() bool {
	return len(r) >= 4 && len(r)%2 == 0 && r[len(r)-2] == 0
}

// Branch returns the branch identity r lives on, by dropping the last
// component. It is only valid to call on a non-branch revision (even length).
func (r Revision) Branch() Revision {
	if r.IsBranch() {
		panic(fmt.Sprintf("Branch() called on branch revision %s", r))
	}
	out := make(Revision, len(r)-1)
	copy(out, r)
	return out
}

// BranchPoint returns the revision a branch originates from, by dropping the
// last two components. It is valid to call on any ordinary revision that
// lives on a branch -- even length, at least 4 components, including the
// magic-branch encoding -- but not on a branch identity itself (odd length)
// or a trunk revision (length 2), neither of which forks from anywhere.
func (r Revision) BranchPoint() Revision {
	if r.IsTrunk() || r.IsBranch() {
		panic(fmt.Sprintf("BranchPoint() called on trunk or branch-identity revision %s", r))
	}
	out := make(Revision, len(r)-2)
	copy(out, r)
	return out
}

// Compare implements the total order of spec.md §3: lexicographic on the
// integer sequence, with a shorter sequence ordering before a longer one
// that shares its prefix. It returns -1, 0 or 1 the way sort comparators do.
func (r Revision) Compare(other Revision) int {
	for i := 0; i < len(r) && i < len(other); i++ {
		if r[i] != other[i] {
			if r[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(r) < len(other):
		return -1
	case len(r) > len(other):
		return 1
	default:
		return 0
	}
}

// Less reports r < other under Compare's order.
func (r Revision) Less(other Revision) bool {
	return r.Compare(other) < 0
}

// Equal reports structural equality of the two revisions.
func (r Revision) Equal(other Revision) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// SameBranch reports whether r and other are on the same branch: equal
// length sharing every component but the last. Any two trunk revisions
// (length 2) are always considered on the same branch.
func (r Revision) SameBranch(other Revision) bool {
	if r.IsTrunk() && other.IsTrunk() {
		return true
	}
	if len(r) != len(other) {
		return false
	}
	for i := 0; i < len(r)-1; i++ {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// branchKey returns the map key identifying the branch r lives on, suitable
// for use as a RevisionSet head-table key. Trunk revisions and the trunk
// itself collapse to the distinguished trunkKey sentinel.
func (r Revision) branchKey() string {
	if r.IsTrunk() {
		return trunkKey
	}
	return r.Branch().String()
}

// trunkKey is the sentinel branch-table key standing in for "no branch",
// i.e. the trunk. It sorts before every real branch key because no real
// dotted revision string is empty.
const trunkKey = ""
