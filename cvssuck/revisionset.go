package main

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// revisionComparator orders two Revision values using Revision.Compare,
// adapting it to gods' generic utils.Comparator signature.
func revisionComparator(a, b interface{}) int {
	return a.(Revision).Compare(b.(Revision))
}

// RevisionSet tracks every revision known for one file, plus the current
// head (maximum-ordered member) of every branch that has at least one
// member, trunk included under the trunkKey sentinel. See spec.md §3.
type RevisionSet struct {
	members *treeset.Set // of Revision, ordered by revisionComparator
	heads   *treemap.Map // branchKey (string) -> Revision
}

// NewRevisionSet builds an empty RevisionSet.
func NewRevisionSet() *RevisionSet {
	return &RevisionSet{
		members: treeset.NewWith(revisionComparator),
		heads:   treemap.NewWith(utils.StringComparator),
	}
}

// Add records rev as known and, if it is now the largest member of its
// branch, updates that branch's head. Callers are expected to add
// revisions in any order; Add is idempotent.
func (rs *RevisionSet) Add(rev Revision) {
	if rs.members.Contains(rev) {
		return
	}
	rs.members.Add(rev)
	key := rev.branchKey()
	if cur, found := rs.heads.Get(key); !found || rev.Compare(cur.(Revision)) > 0 {
		rs.heads.Put(key, rev)
	}
}

// Contains reports whether rev has been recorded.
func (rs *RevisionSet) Contains(rev Revision) bool {
	return rs.members.Contains(rev)
}

// Head returns the maximum-ordered member of the given branch key, if any
// member of that branch has been recorded.
func (rs *RevisionSet) Head(branchKey string) (Revision, bool) {
	v, found := rs.heads.Get(branchKey)
	if !found {
		return nil, false
	}
	return v.(Revision), true
}

// Len returns the number of distinct revisions recorded.
func (rs *RevisionSet) Len() int {
	return rs.members.Size()
}

// Values returns every recorded revision in ascending order.
func (rs *RevisionSet) Values() []Revision {
	raw := rs.members.Values()
	out := make([]Revision, len(raw))
	for i, v := range raw {
		out[i] = v.(Revision)
	}
	return out
}

// Checkinable implements spec.md §3's eligibility rule: given a candidate
// revision, report whether it can legally be the next `ci` on this file and,
// if so, the predecessor revision that must be RCS-locked first (nil when
// none is required, i.e. the first revision on trunk).
//
// The (ok, predecessor, hasPredecessor) triple reads as:
//   - ok == false: rev cannot be checked in yet (it is a branch identity,
//     or its branch's head already dominates it, or its branch point is
//     missing).
//   - ok == true, hasPredecessor == false: rev is insertable with no prior
//     lock step (first trunk revision, or first revision of a branch whose
//     branch point is already present).
//   - ok == true, hasPredecessor == true: predecessor must be `rcs -l`'d
//     before `ci -r<rev>`.
func (rs *RevisionSet) Checkinable(rev Revision) (ok bool, predecessor Revision, hasPredecessor bool) {
	if rev.IsBranch() {
		return false, nil, false
	}
	key := rev.branchKey()
	if head, found := rs.Head(key); found {
		if head.Less(rev) {
			return true, head, true
		}
		return false, nil, false
	}
	if rev.IsTrunk() {
		return true, nil, false
	}
	branchPoint := rev.BranchPoint()
	if rs.Contains(branchPoint) {
		return true, nil, false
	}
	return false, nil, false
}
