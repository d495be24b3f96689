package main

// Config is the immutable configuration threaded through every constructor
// in place of the teacher's package-global Control (spec.md §9 "Global
// mutable state"). A Config is built once by the CLI front end and never
// mutated afterward; anything that needs to vary per module (output/lock
// directories, planner stack) is captured per-ModuleTarget instead.
type Config struct {
	CVSRoot string

	// TmpDir is the parent of the scratch workspace (spec.md §6, TMPDIR).
	TmpDir string
	// LeaveTmp suppresses scratch-tree cleanup on exit (-D leavetmp).
	LeaveTmp bool

	// BreadthFirst selects BFS traversal of the remote module tree;
	// false means DFS (spec.md §4.6, §6 -b).
	BreadthFirst bool

	// SkeletonDepth is the number of times -s was given; each one wraps
	// the active planner in another SkeletonPlanner layer.
	SkeletonDepth int
	// IntroduceOne11 is -1: synthesize a dead 1.1 when absent.
	IntroduceOne11 bool

	// Debug holds the -D toggle set: command, attic, protocollog,
	// leavetmp, mkdir, mkdir_exist.
	Debug DebugFlags
}

// DebugFlags is the closed set of -D toggles from spec.md §6.
type DebugFlags struct {
	Command     bool // log each external command line before running it
	Attic       bool // log Attic placement decisions
	ProtocolLog bool // log full stdout+stderr of every external command
	LeaveTmp    bool // alias also surfaced via Config.LeaveTmp
	Mkdir       bool // log directory creation
	MkdirExist  bool // tolerate pre-existing directories silently
}

// ModuleTarget is one `module` argument together with the output/lock
// directory pair most recently set by -o/-O/-l/-L before it on the command
// line (spec.md §6).
type ModuleTarget struct {
	Name    string
	OutDir  string // -o: exact directory; -O: base directory joined with the module name
	LockDir string // -l: exact directory; -L: base directory joined with the module name
}

// NewPlanner builds the planner stack configured by SkeletonDepth and
// IntroduceOne11: an ExactPlanner at the base, wrapped in SkeletonDepth
// layers of SkeletonPlanner, all sharing the introduce-1.1 option.
func (c Config) NewPlanner() Planner {
	var p Planner = &ExactPlanner{IntroduceOne11: c.IntroduceOne11}
	for i := 0; i < c.SkeletonDepth; i++ {
		p = &SkeletonPlanner{Wrapped: p, IntroduceOne11: c.IntroduceOne11}
	}
	return p
}
