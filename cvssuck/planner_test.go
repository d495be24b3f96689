package main

import "testing"

func delta(rev string, state string) *DeltaInfo {
	return &DeltaInfo{
		Revision: mustParseRevision(rev),
		Date:     "2020/01/01 00:00:00",
		Author:   "alice",
		State:    state,
		Log:      "log message",
	}
}

func TestExactPlannerOrdersAndTagsAttic(t *testing.T) {
	info := &RCSInfo{RCSPath: "/cvsroot/mod/Attic/file.c,v", WorkingFile: "file.c", Head: mustParseRevision("1.2")}
	deltas := []*DeltaInfo{delta("1.2", "dead"), delta("1.1", "Exp")}

	p := &ExactPlanner{}
	plan := p.Plan(info, deltas)

	assertIntEqual(t, len(plan), 2, "exact planner keeps every delta")
	assertTrue(t, plan[0].RemoteDelta.Revision.Equal(mustParseRevision("1.1")), "plan is ordered ascending")
	assertTrue(t, plan[1].RemoteDelta.Revision.Equal(mustParseRevision("1.2")), "1.2 is second")
	if plan[1].Attic != AtticYes {
		t.Error("dead head under Attic/ should be AtticYes")
	}
	if plan[0].Attic != AtticNo {
		t.Error("non-head trunk revision should be AtticNo")
	}
}

func TestExactPlannerIntroducesOne11(t *testing.T) {
	info := &RCSInfo{Head: mustParseRevision("1.2")}
	deltas := []*DeltaInfo{delta("1.2", "Exp")}

	p := &ExactPlanner{IntroduceOne11: true}
	plan := p.Plan(info, deltas)

	assertIntEqual(t, len(plan), 2, "a synthetic dead 1.1 is prepended")
	assertTrue(t, plan[0].RemoteDelta.Revision.Equal(mustParseRevision("1.1")), "synthetic 1.1 comes first")
	assertTrue(t, plan[0].RemoteDelta.IsDead(), "synthetic 1.1 is dead")
}

func TestExactPlannerSkipsOne11WhenAlreadyPresent(t *testing.T) {
	info := &RCSInfo{Head: mustParseRevision("1.1")}
	deltas := []*DeltaInfo{delta("1.1", "Exp")}

	p := &ExactPlanner{IntroduceOne11: true}
	plan := p.Plan(info, deltas)

	assertIntEqual(t, len(plan), 1, "no duplicate 1.1 is introduced when one is already present")
}

func TestSkeletonPlannerKeepsEndsAndBranchTransitions(t *testing.T) {
	info := &RCSInfo{Head: mustParseRevision("1.4")}
	deltas := []*DeltaInfo{
		delta("1.1", "Exp"),
		delta("1.2", "Exp"),
		delta("1.2.2.1", "Exp"),
		delta("1.2.2.2", "Exp"),
		delta("1.3", "Exp"),
		delta("1.4", "Exp"),
	}

	p := &SkeletonPlanner{Wrapped: &ExactPlanner{}}
	plan := p.Plan(info, deltas)

	keptRevisions := make(map[string]bool, len(plan))
	for _, pe := range plan {
		keptRevisions[pe.RemoteDelta.Revision.String()] = true
	}

	assertTrue(t, keptRevisions["1.1"], "first revision is always kept")
	assertTrue(t, keptRevisions["1.4"], "last revision is always kept")
	assertTrue(t, keptRevisions["1.2"], "branch point 1.2 is kept as the trunk side of the transition")
	assertFalse(t, keptRevisions["1.2.2.1"], "first branch revision is dropped (only its branch point 1.2 is kept)")
	assertTrue(t, keptRevisions["1.2.2.2"], "last branch revision is kept as the other end of its run")
	assertFalse(t, keptRevisions["1.3"], "trunk resumption after the branch is dropped (it is neither an end nor the last of a run)")
}

func TestSkeletonPlannerKeepsTaggedRevisions(t *testing.T) {
	info := &RCSInfo{
		Head: mustParseRevision("1.5"),
		Tags: []TagEntry{{Name: "REL_1", Revision: mustParseRevision("1.3")}},
	}
	deltas := []*DeltaInfo{
		delta("1.1", "Exp"),
		delta("1.2", "Exp"),
		delta("1.3", "Exp"),
		delta("1.4", "Exp"),
		delta("1.5", "Exp"),
	}

	p := &SkeletonPlanner{Wrapped: &ExactPlanner{}}
	plan := p.Plan(info, deltas)

	found := false
	for _, pe := range plan {
		if pe.RemoteDelta.Revision.Equal(mustParseRevision("1.3")) {
			found = true
		}
	}
	assertTrue(t, found, "a tagged revision is kept even though it is not an endpoint or branch transition")
}

func TestSkeletonPlannerKeepsMagicBranchTagsBranchPoint(t *testing.T) {
	info := &RCSInfo{
		Head: mustParseRevision("1.5"),
		Tags: []TagEntry{{Name: "UNSTABLE", Revision: mustParseRevision("1.2.0.2")}},
	}
	deltas := []*DeltaInfo{
		delta("1.1", "Exp"),
		delta("1.2", "Exp"),
		delta("1.3", "Exp"),
		delta("1.4", "Exp"),
		delta("1.5", "Exp"),
	}

	p := &SkeletonPlanner{Wrapped: &ExactPlanner{}}
	plan := p.Plan(info, deltas)

	found := false
	for _, pe := range plan {
		if pe.RemoteDelta.Revision.Equal(mustParseRevision("1.2")) {
			found = true
		}
	}
	assertTrue(t, found, "a magic-branch tag's branch point (1.2) is kept, not its undelivered branch identity (1.2.2)")
}

func TestSkeletonPlannerEmptyDeltas(t *testing.T) {
	info := &RCSInfo{Head: mustParseRevision("1.1")}
	p := &SkeletonPlanner{Wrapped: &ExactPlanner{}}
	plan := p.Plan(info, nil)
	assertIntEqual(t, len(plan), 0, "no deltas in, no plan entries out")
}
