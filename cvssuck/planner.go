package main

import "sort"

// PlanEntry is one step of a Planner's output: check out remoteDelta from
// the server, record it locally as localDelta, and (for trunk entries)
// place the file in or out of Attic according to attic (spec.md §4.2).
type PlanEntry struct {
	RemoteDelta *DeltaInfo
	LocalDelta  *DeltaInfo
	Attic       AtticDecision
}

// AtticDecision is a tri-state: AtticYes/AtticNo apply to trunk entries,
// AtticNone means "leave Attic placement alone" (every non-trunk entry).
type AtticDecision int

const (
	AtticNone AtticDecision = iota
	AtticYes
	AtticNo
)

// Planner transforms one file's (RCSInfo, deltas) into an ordered plan.
// Skeleton wraps another Planner the way the teacher's ColorMixer wraps a
// base Extractor (spec.md §4.2, §9 "Planner composition").
type Planner interface {
	Plan(info *RCSInfo, deltas []*DeltaInfo) []PlanEntry
}

// synthesizeOne11 builds the synthetic dead 1.1 the introduce-1.1 option
// injects when the remote log has no real 1.1 (spec.md §4.2).
func synthesizeOne11() *DeltaInfo {
	return &DeltaInfo{
		Revision: mustParseRevision("1.1"),
		Date:     "1970/01/01 00:00:00",
		Author:   "cvssuck",
		State:    "dead",
		Log:      "",
	}
}

// withIntroducedOne11 returns deltas with a synthetic dead 1.1 prepended if
// introduce is set and no real 1.1 is present.
func withIntroducedOne11(deltas []*DeltaInfo, introduce bool) []*DeltaInfo {
	if !introduce {
		return deltas
	}
	for _, d := range deltas {
		if d.Revision.IsTrunk() && d.Revision.Equal(mustParseRevision("1.1")) {
			return deltas
		}
	}
	out := make([]*DeltaInfo, 0, len(deltas)+1)
	out = append(out, synthesizeOne11())
	out = append(out, deltas...)
	return out
}

func sortedByRevision(deltas []*DeltaInfo) []*DeltaInfo {
	out := make([]*DeltaInfo, len(deltas))
	copy(out, deltas)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Revision.Less(out[j].Revision)
	})
	return out
}

// atticFor applies spec.md §4.2's Attic policy to a trunk plan entry: a
// file is in Attic iff its remote head is dead and the remote RCS path
// already lives under Attic/.
func atticFor(info *RCSInfo, delta *DeltaInfo) AtticDecision {
	if !delta.Revision.IsTrunk() {
		return AtticNone
	}
	if delta.IsDead() && delta.Revision.Equal(info.Head) && info.Attic() {
		return AtticYes
	}
	return AtticNo
}

// ExactPlanner yields every delta in revision order, unfiltered.
type ExactPlanner struct {
	IntroduceOne11 bool
}

// Plan implements Planner.
func (p *ExactPlanner) Plan(info *RCSInfo, deltas []*DeltaInfo) []PlanEntry {
	ordered := sortedByRevision(withIntroducedOne11(deltas, p.IntroduceOne11))
	entries := make([]PlanEntry, len(ordered))
	for i, d := range ordered {
		entries[i] = PlanEntry{RemoteDelta: d, LocalDelta: d, Attic: atticFor(info, d)}
	}
	return entries
}

// SkeletonPlanner wraps another Planner and retains only the topologically
// significant revisions of spec.md §4.2's Skeleton algorithm, forwarding
// the filtered delta list to the wrapped planner.
type SkeletonPlanner struct {
	Wrapped        Planner
	IntroduceOne11 bool
}

// Plan implements Planner.
func (p *SkeletonPlanner) Plan(info *RCSInfo, deltas []*DeltaInfo) []PlanEntry {
	all := withIntroducedOne11(deltas, p.IntroduceOne11)
	ordered := sortedByRevision(all)
	if len(ordered) == 0 {
		return p.Wrapped.Plan(info, nil)
	}

	byRevision := make(map[string]*DeltaInfo, len(ordered))
	for _, d := range ordered {
		byRevision[d.Revision.String()] = d
	}

	keep := map[string]Revision{}
	add := func(r Revision) {
		if r != nil {
			keep[r.String()] = r
		}
	}

	add(ordered[0].Revision)
	add(ordered[len(ordered)-1].Revision)

	for i := 0; i+1 < len(ordered); i++ {
		r1, r2 := ordered[i].Revision, ordered[i+1].Revision
		if !r1.SameBranch(r2) {
			add(r1)
			if !r2.IsTrunk() {
				add(r2.BranchPoint())
			}
		}
	}

	one11 := mustParseRevision("1.1")
	if _, found := byRevision[one11.String()]; found {
		add(one11)
	}

	for _, tag := range info.Tags {
		r := tag.Revision
		if r.IsMagicBranch() {
			add(r.BranchPoint())
		} else if !r.IsBranch() {
			add(r)
		}
	}

	kept := make([]Revision, 0, len(keep))
	for _, r := range keep {
		kept = append(kept, r)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Less(kept[j]) })

	filtered := make([]*DeltaInfo, 0, len(kept))
	for _, r := range kept {
		if d, found := byRevision[r.String()]; found {
			filtered = append(filtered, d)
		}
	}

	return p.Wrapped.Plan(info, filtered)
}
