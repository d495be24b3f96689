package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CVSWork drives the `cvs` client in a scratch workspace to read the
// remote repository (spec.md §4.5). It never touches the local mirror;
// LocalFile/LocalDirectory own that side entirely.
type CVSWork struct {
	cvsroot   string
	scratch   string // top-level scratch directory, with CVS/Root etc.
	runner    commandRunner
	nextChild byte // 'a', 'b', ... names for setup_workdir's fresh subdirs

	cachedRevision string // one-entry getrevision cache key: "subdir/file@rev"
	cachedPath     string
}

// NewCVSWork creates the top-level scratch workspace under parentTmp
// (spec.md §6 TMPDIR) and seeds its CVS/Root.
func NewCVSWork(cvsroot, parentTmp string, runner commandRunner) (*CVSWork, error) {
	scratch, err := os.MkdirTemp(parentTmp, "cvssuck-*")
	if err != nil {
		return nil, err
	}
	w := &CVSWork{cvsroot: cvsroot, scratch: scratch, runner: runner, nextChild: 'a'}
	if err := w.writeCVSAdminFiles(scratch, "."); err != nil {
		return nil, err
	}
	return w, nil
}

// Cleanup removes the scratch workspace unless the caller wants it kept
// for debugging (-D leavetmp / -v).
func (w *CVSWork) Cleanup(leave bool) {
	if !leave {
		os.RemoveAll(w.scratch)
	}
}

func (w *CVSWork) writeCVSAdminFiles(dir, repository string) error {
	cvsDir := filepath.Join(dir, "CVS")
	if err := os.MkdirAll(cvsDir, 0775); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cvsDir, "Root"), []byte(w.cvsroot+"\n"), 0664); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cvsDir, "Repository"), []byte(repository+"\n"), 0664); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cvsDir, "Entries"), nil, 0664)
}

// addEntriesChildLine registers name as a directory child of parentDir's
// CVS/Entries, the bookkeeping `cvs` itself expects to find there.
func addEntriesChildLine(parentDir, name string) error {
	path := filepath.Join(parentDir, "CVS", "Entries")
	existing, _ := os.ReadFile(path)
	line := fmt.Sprintf("D/%s////\n", name)
	return os.WriteFile(path, append(existing, []byte(line)...), 0664)
}

// SetupWorkdir allocates a fresh sibling scratch subdirectory for
// repository (a relative path below the module root), registers it as a
// directory child of its parent's CVS/Entries, and discards any cached
// checkout (spec.md §4.5 "setup_workdir").
func (w *CVSWork) SetupWorkdir(parentDir, repository string) (string, error) {
	name := string(w.nextChild)
	w.nextChild++
	dir := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dir, 0775); err != nil {
		return "", err
	}
	if err := w.writeCVSAdminFiles(dir, repository); err != nil {
		return "", err
	}
	if err := addEntriesChildLine(parentDir, name); err != nil {
		return "", err
	}
	w.cachedRevision = ""
	w.cachedPath = ""
	return dir, nil
}

var subdirLine = regexp.MustCompile(`: New directory \x60([^']+)' -- ignored`)

// GetSubdirs lists dir's immediate remote subdirectories by scraping the
// stderr of `cvs update -r00 -d -p`, the documented side-channel CVS uses
// to report them (spec.md §4.5 "getsubdirs").
func (w *CVSWork) GetSubdirs(dir string) ([]string, error) {
	output, err := w.runner.run(dir, "cvs", "update", "-r00", "-d", "-p")
	if err != nil {
		// cvs update exits non-zero on this deliberately-invalid revision
		// even when everything went as expected; only an empty subdirs
		// scan plus a real error message indicates trouble, so fall
		// through and let the caller see no subdirectories on failure.
		_ = err
	}
	var subdirs []string
	for _, line := range strings.Split(string(output), "\n") {
		m := subdirLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		base := filepath.Base(name)
		if base == "." || base == ".." {
			continue
		}
		subdirs = append(subdirs, base)
	}
	return subdirs, nil
}

// ParseLogs runs `cvs log` (optionally `-d<since><` for an incremental
// pull) over dir and streams the result through a LogParser, invoking
// handle once per file (spec.md §4.5 "parselogs"). An empty remote
// directory ("nothing known about") is demoted to a warning rather than
// an error.
func (w *CVSWork) ParseLogs(dir, since string, handle func(FileRecord) error) error {
	args := []string{"log"}
	if since != "" {
		args = append(args, "-d"+since+"<")
	}
	args = append(args, ".")
	output, err := w.runner.run(dir, "cvs", args...)
	if err != nil {
		if strings.Contains(string(output), "nothing known about") {
			croak("empty remote directory: %s", dir)
			return nil
		}
		return cvsCommandFailure(quoted("cvs", args...), output, err)
	}
	parser := &LogParser{}
	return parser.Parse(output, handle)
}

// GetRevision checks out the given revision of file (relative to dir)
// with keyword expansion disabled (-ko, not -kb, so the server still
// performs delta transmission on text files -- spec.md §4.5) and returns
// the path to the resulting workspace file. A small one-file cache avoids
// redundant checkouts when the planner emits consecutive revisions of the
// same file.
func (w *CVSWork) GetRevision(dir, file string, rev Revision) (string, error) {
	key := filepath.Join(dir, file) + "@" + rev.String()
	if key == w.cachedRevision {
		return w.cachedPath, nil
	}
	args := []string{"update", "-ko", "-r" + rev.String(), file}
	output, err := w.runner.run(dir, "cvs", args...)
	if err != nil {
		return "", cvsCommandFailure(quoted("cvs", args...), output, err)
	}
	path := filepath.Join(dir, file)
	w.cachedRevision = key
	w.cachedPath = path
	return path, nil
}
