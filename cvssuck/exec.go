package main

import (
	"os/exec"

	shellquote "github.com/kballard/go-shellquote"
)

// commandRunner executes an external command and reports its combined
// stdout+stderr plus exit error. It is the seam the teacher's own
// HgExtractor.capture sits behind (in front of a real-or-fake HgClient),
// letting localfile.go and cvswork.go be unit tested against a recording
// fake instead of forking real cvs/ci/rcs/rlog binaries.
type commandRunner interface {
	run(dir string, name string, args ...string) (output []byte, err error)
}

// execRunner is the production commandRunner: it really forks the named
// program.
type execRunner struct {
	debug DebugFlags
	baton *Baton
}

func (r execRunner) run(dir string, name string, args ...string) ([]byte, error) {
	if r.debug.Command {
		logit("%s", shellquote.Join(append([]string{name}, args...)...))
	}
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if r.debug.ProtocolLog {
		r.baton.printLog(output)
	}
	return output, err
}

// quoted renders a command line the way the teacher's extractor.go logs
// hg/git invocations, for use in error messages.
func quoted(name string, args ...string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}
