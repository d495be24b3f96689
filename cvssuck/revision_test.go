package main

import "testing"

func assertTrue(t *testing.T, see bool, msg string) {
	t.Helper()
	if !see {
		t.Errorf("expected true: %s", msg)
	}
}

func assertFalse(t *testing.T, see bool, msg string) {
	t.Helper()
	if see {
		t.Errorf("expected false: %s", msg)
	}
}

func assertIntEqual(t *testing.T, got, want int, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %d, want %d", msg, got, want)
	}
}

func TestRevisionPredicates(t *testing.T) {
	trunk := mustParseRevision("1.4")
	assertTrue(t, trunk.IsTrunk(), "1.4 is trunk")
	assertFalse(t, trunk.IsBranch(), "1.4 is not a branch")
	assertFalse(t, trunk.IsMagicBranch(), "1.4 is not a magic branch")

	branchRev := mustParseRevision("1.2.2.1")
	assertFalse(t, branchRev.IsTrunk(), "1.2.2.1 is not trunk")
	assertFalse(t, branchRev.IsBranch(), "1.2.2.1 is not itself a branch")

	branchID := mustParseRevision("1.2.2")
	assertTrue(t, branchID.IsBranch(), "1.2.2 names a branch")

	magic := mustParseRevision("1.2.0.2")
	assertTrue(t, magic.IsMagicBranch(), "1.2.0.2 is a magic branch")
	assertFalse(t, trunk.IsMagicBranch(), "1.4 is not magic")
}

func TestRevisionBranchAndBranchPoint(t *testing.T) {
	r := mustParseRevision("1.2.2.1")
	assertTrue(t, r.Branch().Equal(mustParseRevision("1.2.2")), "branch() of 1.2.2.1")
	assertTrue(t, r.BranchPoint().Equal(mustParseRevision("1.2")), "branch_point() of 1.2.2.1")

	magic := mustParseRevision("1.2.0.2")
	assertTrue(t, magic.BranchPoint().Equal(mustParseRevision("1.2")), "branch_point() also applies to the magic-branch encoding")
}

func TestRevisionCompareOrdering(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.1", "1.2", -1},
		{"1.2", "1.1", 1},
		{"1.2", "1.2", 0},
		{"1.2", "1.2.2.1", -1},
		{"1.10", "1.2", 1},
	}
	for _, c := range cases {
		got := mustParseRevision(c.a).Compare(mustParseRevision(c.b))
		assertIntEqual(t, got, c.want, c.a+" vs "+c.b)
	}
}

func TestRevisionSameBranch(t *testing.T) {
	assertTrue(t, mustParseRevision("1.3").SameBranch(mustParseRevision("1.7")), "any two trunk revisions share a branch")
	assertTrue(t, mustParseRevision("1.2.2.1").SameBranch(mustParseRevision("1.2.2.4")), "same branch members")
	assertFalse(t, mustParseRevision("1.2.2.1").SameBranch(mustParseRevision("1.2.4.1")), "different branches")
}

func TestParseRevisionRejectsShortSequences(t *testing.T) {
	if _, err := parseRevision("1"); err == nil {
		t.Error("expected error for single-component revision")
	}
	if _, err := parseRevision("a.b"); err == nil {
		t.Error("expected error for non-numeric revision")
	}
}
