package main

import "fmt"

// fakeRunner is a recording commandRunner substituting for cvs/ci/rcs/rlog in
// tests, mirroring the seam the teacher's extractor tests use in place of a
// real hg/git binary.
type fakeRunner struct {
	calls     []string
	responses map[string][]byte // name -> canned output, keyed by program name
	errors    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: map[string][]byte{},
		errors:    map[string]error{},
	}
}

func (f *fakeRunner) run(dir string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s %v", name, args))
	return f.responses[name], f.errors[name]
}
