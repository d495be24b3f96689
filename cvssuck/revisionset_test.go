package main

import "testing"

func TestRevisionSetCheckinableTrunk(t *testing.T) {
	rs := NewRevisionSet()

	ok, _, hasPred := rs.Checkinable(mustParseRevision("1.1"))
	assertTrue(t, ok, "1.1 is checkinable into an empty set")
	assertFalse(t, hasPred, "first trunk revision needs no predecessor lock")

	rs.Add(mustParseRevision("1.1"))

	ok, pred, hasPred := rs.Checkinable(mustParseRevision("1.2"))
	assertTrue(t, ok, "1.2 is checkinable after 1.1")
	assertTrue(t, hasPred, "1.2 needs 1.1 locked first")
	assertTrue(t, pred.Equal(mustParseRevision("1.1")), "predecessor of 1.2 is 1.1")

	ok, _, _ = rs.Checkinable(mustParseRevision("1.1"))
	assertFalse(t, ok, "1.1 is already present and not checkinable again")
}

func TestRevisionSetCheckinableRejectsBranchIdentity(t *testing.T) {
	rs := NewRevisionSet()
	ok, _, _ := rs.Checkinable(mustParseRevision("1.2.2"))
	assertFalse(t, ok, "a branch identity (odd number of components) is never checkinable")
}

func TestRevisionSetCheckinableBranchNeedsBranchPoint(t *testing.T) {
	rs := NewRevisionSet()

	ok, _, _ := rs.Checkinable(mustParseRevision("1.2.2.1"))
	assertFalse(t, ok, "1.2.2.1 is not checkinable before its branch point 1.2 is known")

	rs.Add(mustParseRevision("1.1"))
	rs.Add(mustParseRevision("1.2"))

	ok, _, hasPred := rs.Checkinable(mustParseRevision("1.2.2.1"))
	assertTrue(t, ok, "1.2.2.1 is checkinable once 1.2 is present")
	assertFalse(t, hasPred, "first revision of a branch needs no predecessor lock")

	rs.Add(mustParseRevision("1.2.2.1"))

	ok, pred, hasPred := rs.Checkinable(mustParseRevision("1.2.2.2"))
	assertTrue(t, ok, "1.2.2.2 is checkinable after 1.2.2.1")
	assertTrue(t, hasPred, "1.2.2.2 needs 1.2.2.1 locked first")
	assertTrue(t, pred.Equal(mustParseRevision("1.2.2.1")), "predecessor of 1.2.2.2 is 1.2.2.1")
}

func TestRevisionSetCheckinableRejectsOutOfOrder(t *testing.T) {
	rs := NewRevisionSet()
	rs.Add(mustParseRevision("1.1"))
	rs.Add(mustParseRevision("1.2"))
	rs.Add(mustParseRevision("1.3"))

	ok, _, _ := rs.Checkinable(mustParseRevision("1.2"))
	assertFalse(t, ok, "a revision behind the branch head is not checkinable")
}

func TestRevisionSetHeadTracksMaximumPerBranch(t *testing.T) {
	rs := NewRevisionSet()
	rs.Add(mustParseRevision("1.1"))
	rs.Add(mustParseRevision("1.3"))
	rs.Add(mustParseRevision("1.2"))
	rs.Add(mustParseRevision("1.2.2.1"))

	head, found := rs.Head(trunkKey)
	assertTrue(t, found, "trunk has a head")
	assertTrue(t, head.Equal(mustParseRevision("1.3")), "trunk head is the largest trunk member")

	branchHead, found := rs.Head(mustParseRevision("1.2.2.1").branchKey())
	assertTrue(t, found, "branch 1.2.2 has a head")
	assertTrue(t, branchHead.Equal(mustParseRevision("1.2.2.1")), "branch head is 1.2.2.1")

	assertIntEqual(t, rs.Len(), 4, "four distinct revisions recorded")
}
