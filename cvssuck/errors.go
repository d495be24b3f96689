package main

import "fmt"

// cvssuck uses the teacher's panic/recover exception idiom: throw() builds a
// typed payload, which callers either return as an error or panic with
// (lock.go panics with couldnotlock); catch() may only be called in a defer
// hook and recovers a payload of the expected class, re-panicking anything
// else so an unrelated exception keeps unwinding toward its own handler.
//
// Classes, per spec.md §7:
//
// logformat    = unparsable `log`/`rlog` output. Fatal for the current file.
// cvscommand   = non-zero exit from a `cvs` invocation. Fatal for the file.
// rcscommand   = non-zero exit from `ci`/`rcs`/`rlog`. Fatal for the file.
// lock         = a single lock-acquisition step failed. Caught internally
//                by the retry layer in lock.go.
// couldnotlock = the retry budget was exhausted. Fatal for the directory.
//
// Unlabeled panics are unrecoverable and abort the run.

type exception struct {
	class   string
	message string
}

func (e *exception) Error() string {
	return e.message
}

func throw(class string, format string, args ...interface{}) *exception {
	return &exception{class: class, message: fmt.Sprintf(format, args...)}
}

// catch recovers x if it is an *exception of the given class, returning nil
// when there was nothing to recover. Any other panic value is re-raised.
func catch(class string, x interface{}) *exception {
	if x == nil {
		return nil
	}
	if e, ok := x.(*exception); ok && e.class == class {
		return e
	}
	panic(x)
}

const (
	classLogFormat    = "logformat"
	classCVSCommand   = "cvscommand"
	classRCSCommand   = "rcscommand"
	classLock         = "lock"
	classCouldNotLock = "couldnotlock"
)

// cvsCommandFailure and rcsCommandFailure report a non-zero exit from the
// cvs client or the ci/rcs/rlog trio respectively (spec.md §7).
func cvsCommandFailure(cmdline string, output []byte, err error) *exception {
	return throw(classCVSCommand, "%s: %v\n%s", cmdline, err, output)
}

func rcsCommandFailure(cmdline string, output []byte, err error) *exception {
	return throw(classRCSCommand, "%s: %v\n%s", cmdline, err, output)
}
