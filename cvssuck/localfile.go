package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFile reads and incrementally writes one file's RCS history under a
// locked LocalDirectory (spec.md §3, §4.4). It caches (RCSInfo, deltas,
// RevisionSet, disk placement) keyed by the owning directory's age
// counter, and refuses to trust that cache across an age change the way
// spec.md §3's invariant requires.
type LocalFile struct {
	dir    *LocalDirectory
	name   string // working-file base name
	runner commandRunner

	cachedAge uint64
	cached    bool // true once a cache (possibly "absent") has been populated
	info      *RCSInfo
	deltas    []*DeltaInfo
	revisions *RevisionSet
	foundPath string // "" if no RCS file exists yet
	inAttic   bool
}

// rcsPath returns the live-placement path, i.e. where the file would live
// if it were not dead.
func (lf *LocalFile) rcsPath() string {
	return filepath.Join(lf.dir.path, lf.name+",v")
}

func (lf *LocalFile) atticPath() string {
	return filepath.Join(lf.dir.path, "Attic", lf.name+",v")
}

// find probes for the RCS file under the current lock, per spec.md §4.4:
// requires the directory to already be locked (read or write), or it is a
// programming error.
func (lf *LocalFile) find() (path string, inAttic bool, ok bool) {
	if lf.dir.lock.state == unlocked {
		panic(fmt.Sprintf("find() on %s/%s called without a directory lock", lf.dir.relPath, lf.name))
	}
	if st, err := os.Stat(lf.rcsPath()); err == nil && st.Mode().IsRegular() {
		return lf.rcsPath(), false, true
	}
	if st, err := os.Stat(lf.atticPath()); err == nil && st.Mode().IsRegular() {
		return lf.atticPath(), true, true
	}
	return "", false, false
}

// ensureFresh refreshes (info, deltas, revisions) if the directory's age
// has moved past what was cached, or if nothing has been cached yet
// (spec.md §3 "age counter", §4.4 "read_rcsinfo_deltas").
func (lf *LocalFile) ensureFresh() error {
	if lf.cached && lf.cachedAge == lf.dir.age() {
		return nil
	}
	return lf.dir.ReadLock(func() error {
		if lf.cached && lf.cachedAge == lf.dir.age() {
			return nil
		}
		path, inAttic, ok := lf.find()
		if !ok {
			lf.foundPath = ""
			lf.info = nil
			lf.deltas = nil
			lf.revisions = NewRevisionSet()
			lf.inAttic = false
			lf.cached = true
			lf.cachedAge = lf.dir.age()
			return nil
		}
		output, err := lf.runner.run(lf.dir.path, "rlog", path)
		if err != nil {
			return rcsCommandFailure(quoted("rlog", path), output, err)
		}
		var rec FileRecord
		got := false
		parser := &LogParser{}
		if perr := parser.Parse(output, func(r FileRecord) error {
			rec = r
			got = true
			return nil
		}); perr != nil {
			return perr
		}
		if !got {
			return logFormatError("rlog %s produced no parseable file record", path)
		}
		revisions := NewRevisionSet()
		for _, d := range rec.Deltas {
			revisions.Add(d.Revision)
		}
		lf.foundPath = path
		lf.inAttic = inAttic
		lf.info = rec.Info
		lf.deltas = rec.Deltas
		lf.revisions = revisions
		lf.cached = true
		lf.cachedAge = lf.dir.age()
		return nil
	})
}

// Checkinable answers spec.md §4.4's two-phase check: a cheap negative
// answer from the in-memory cache, confirmed under a read lock only when
// the cheap answer is positive. This is sound only because RCS files grow
// monotonically (spec.md §4.4, §9 open question on `rcs -o`/`cvs admin -o`).
func (lf *LocalFile) Checkinable(rev Revision) (ok bool, predecessor Revision, hasPredecessor bool, err error) {
	if lf.cached && lf.revisions != nil {
		if cheapOK, _, _ := lf.revisions.Checkinable(rev); !cheapOK {
			return false, nil, false, nil
		}
	}
	if err := lf.ensureFresh(); err != nil {
		return false, nil, false, err
	}
	ok, predecessor, hasPredecessor = lf.revisions.Checkinable(rev)
	return ok, predecessor, hasPredecessor, nil
}

// Commit implements spec.md §4.4's commit(attic, rcsinfo, delta, contents)
// under a write lock.
func (lf *LocalFile) Commit(remoteInfo *RCSInfo, entry PlanEntry, contentsPath string, debug DebugFlags) error {
	return lf.dir.WriteLock(func() error {
		if err := lf.ensureFresh(); err != nil {
			return err
		}
		delta := entry.LocalDelta
		if lf.revisions.Contains(delta.Revision) {
			return nil
		}
		ok, predecessor, hasPredecessor := lf.revisions.Checkinable(delta.Revision)
		if !ok {
			return nil
		}

		targetPath := lf.foundPath
		if targetPath == "" {
			targetPath = lf.rcsPath()
			if entry.Attic == AtticYes {
				targetPath = lf.atticPath()
			}
			if err := ensureDir(filepath.Dir(targetPath), debug); err != nil {
				return err
			}
			// The fresh file is already placed where the Attic policy
			// wants it; record that so the rename check below is a no-op.
			lf.inAttic = entry.Attic == AtticYes
		}

		if hasPredecessor {
			lockArg := "-l" + predecessor.String()
			if out, err := lf.runner.run(lf.dir.path, "rcs", "-q", lockArg, targetPath); err != nil {
				return rcsCommandFailure(quoted("rcs", "-q", lockArg, targetPath), out, err)
			}
		}

		scratch, err := os.MkdirTemp("", "cvssuck-ci-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(scratch)
		workingCopy := filepath.Join(scratch, lf.name)
		src := contentsPath
		if delta.IsDead() {
			src = ""
		}
		if err := copyOrEmpty(src, workingCopy); err != nil {
			return err
		}

		logMsg := delta.Log
		if strings.TrimSpace(logMsg) == "" {
			logMsg = "*** empty log message ***"
		}
		args := []string{
			"-q",
			"-r" + delta.Revision.String(),
			"-f",
			"-d" + delta.Date,
			"-m" + logMsg,
			"-t-" + remoteInfo.Description,
			"-s" + delta.State,
			"-w" + delta.Author,
			targetPath,
			workingCopy,
		}
		if out, err := lf.runner.run(scratch, "ci", args...); err != nil {
			return rcsCommandFailure(quoted("ci", args...), out, err)
		}

		if entry.Attic != AtticNone {
			wantAttic := entry.Attic == AtticYes
			if wantAttic != lf.inAttic {
				dst := lf.rcsPath()
				if wantAttic {
					dst = lf.atticPath()
				}
				if debug.Attic {
					logit("attic: moving %s to %s", targetPath, dst)
				}
				if err := ensureDir(filepath.Dir(dst), debug); err != nil {
					return err
				}
				if err := os.Rename(targetPath, dst); err != nil {
					if err := shutilCopy(targetPath, dst); err != nil {
						return err
					}
					os.Remove(targetPath)
				}
				targetPath = dst
				lf.inAttic = wantAttic
			}
		}

		lf.foundPath = targetPath
		lf.revisions.Add(delta.Revision)
		lf.deltas = append(lf.deltas, delta)
		return nil
	})
}

// UpdateAttributes implements spec.md §4.4's update_attributes: diff the
// remote RCSInfo against the cached local one and issue a single `rcs -q`
// bundling every attribute that differs, or nothing at all if none do.
func (lf *LocalFile) UpdateAttributes(remote *RCSInfo) error {
	return lf.dir.WriteLock(func() error {
		if err := lf.ensureFresh(); err != nil {
			return err
		}
		if lf.foundPath == "" {
			// No local RCS file exists yet; attributes will be set
			// correctly by the first commit's `ci` invocation instead.
			return nil
		}
		var args []string
		if remote.DefaultBranch != nil && (lf.info.DefaultBranch == nil || !remote.DefaultBranch.Equal(lf.info.DefaultBranch)) {
			args = append(args, "-b"+remote.DefaultBranch.String())
		}
		if remote.KeywordMode != "" && remote.KeywordMode != lf.info.KeywordMode {
			args = append(args, "-k"+remote.KeywordMode)
		}

		localByName := make(map[string]Revision, len(lf.info.Tags))
		for _, t := range lf.info.Tags {
			localByName[t.Name] = t.Revision
		}
		// Iterate in reverse so that earlier entries in the remote list
		// win when a name repeats, matching CVS's own symbol-table
		// semantics (spec.md §4.4).
		for i := len(remote.Tags) - 1; i >= 0; i-- {
			tag := remote.Tags[i]
			if localRev, found := localByName[tag.Name]; !found {
				args = append(args, "-n"+tag.Name+":"+tag.Revision.String())
			} else if !localRev.Equal(tag.Revision) {
				args = append(args, "-N"+tag.Name+":"+tag.Revision.String())
			}
		}

		if len(args) == 0 {
			return nil
		}
		full := append([]string{"-q"}, args...)
		full = append(full, lf.foundPath)
		if out, err := lf.runner.run(lf.dir.path, "rcs", full...); err != nil {
			return rcsCommandFailure(quoted("rcs", full...), out, err)
		}
		lf.cached = false // force a re-read; we changed the file out of band
		return nil
	})
}
