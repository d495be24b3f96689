package main

import (
	"path/filepath"
)

// CVSSuck is the top-level orchestrator of spec.md §4.6: it walks the
// remote module tree and, per directory per file, invokes the planner and
// then the local writer.
type CVSSuck struct {
	config  Config
	work    *CVSWork
	planner Planner
}

// NewCVSSuck builds an orchestrator for one module, given an already-open
// CVSWork scratch workspace.
func NewCVSSuck(config Config, work *CVSWork) *CVSSuck {
	return &CVSSuck{config: config, work: work, planner: config.NewPlanner()}
}

// queueEntry is one pending directory in the BFS/DFS walk: its path
// relative to the module root, and the scratch-workspace directory
// CVSWork last set up for it.
type queueEntry struct {
	relPath string
	workDir string
}

// UpdateModule walks remoteTop (a module name, the root of the walk) and
// mirrors every file it and its subdirectories contain into repo
// (spec.md §4.6). Traversal order is controlled by config.BreadthFirst.
func (s *CVSSuck) UpdateModule(remoteTop string, repo *LocalRepository) error {
	rootWorkDir, err := s.work.SetupWorkdir(s.work.scratch, remoteTop)
	if err != nil {
		return err
	}
	queue := []queueEntry{{relPath: "", workDir: rootWorkDir}}

	for len(queue) > 0 {
		var entry queueEntry
		entry, queue = queue[0], queue[1:]

		if globalBaton != nil {
			globalBaton.twirl()
		}

		subdirs, err := s.work.GetSubdirs(entry.workDir)
		if err != nil {
			return err
		}

		localDir := repo.Directory(entry.relPath)
		if err := localDir.ensureDirExists(s.config.Debug); err != nil {
			return err
		}

		var children []queueEntry
		for _, name := range subdirs {
			childRel := filepath.Join(entry.relPath, name)
			childWorkDir, err := s.work.SetupWorkdir(entry.workDir, filepath.Join(remoteTop, childRel))
			if err != nil {
				return err
			}
			children = append(children, queueEntry{relPath: childRel, workDir: childWorkDir})
		}
		if s.config.BreadthFirst {
			queue = append(queue, children...)
		} else {
			// DFS: push children at the front, in reverse, so the first
			// child listed is processed next (spec.md §4.6).
			for i := len(children) - 1; i >= 0; i-- {
				queue = append([]queueEntry{children[i]}, queue...)
			}
		}

		if err := s.processDirectory(entry, localDir); err != nil {
			return err
		}

		// Stand-in for spec.md §4.6's "fork a child to process the
		// current directory's files" resource-growth bound: see
		// localrepo.go's LocalRepository.Reset doc comment.
		repo.Reset()
	}
	return nil
}

// processDirectory drives planner -> writer for every file `cvs log`
// reports in one directory (spec.md §2 data flow, §4.6).
func (s *CVSSuck) processDirectory(entry queueEntry, localDir *LocalDirectory) error {
	var failures []error
	err := s.work.ParseLogs(entry.workDir, "", func(rec FileRecord) error {
		if globalBaton != nil {
			globalBaton.bumpCounter()
		}
		if ferr := s.processFile(entry, localDir, rec); ferr != nil {
			if e, ok := ferr.(*exception); ok && (e.class == classLogFormat || e.class == classCVSCommand || e.class == classRCSCommand) {
				croak("%s/%s: %v", entry.relPath, rec.Info.WorkingFile, ferr)
				failures = append(failures, ferr)
				return nil
			}
			return ferr
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		logit("%s: %d file(s) failed and were skipped", entry.relPath, len(failures))
	}
	return nil
}

// processFile runs the planner for one file's log and drives each
// resulting plan entry through the local writer (spec.md §2 data flow).
func (s *CVSSuck) processFile(entry queueEntry, localDir *LocalDirectory, rec FileRecord) error {
	localFile := localDir.File(rec.Info.WorkingFile)
	plan := s.planner.Plan(rec.Info, rec.Deltas)

	s.warnOfLocalDivergence(localFile, rec)

	for _, pe := range plan {
		var contentsPath string
		if !pe.RemoteDelta.IsDead() {
			path, err := s.work.GetRevision(entry.workDir, rec.Info.WorkingFile, pe.RemoteDelta.Revision)
			if err != nil {
				return err
			}
			contentsPath = path
		}
		if err := localFile.Commit(rec.Info, pe, contentsPath, s.config.Debug); err != nil {
			return err
		}
	}

	return localFile.UpdateAttributes(rec.Info)
}

// warnOfLocalDivergence implements the spec.md §9 open-question policy:
// a local revision absent from the remote plan is left untouched, but
// logged, rather than silently ignored or removed.
func (s *CVSSuck) warnOfLocalDivergence(localFile *LocalFile, rec FileRecord) {
	if err := localFile.ensureFresh(); err != nil {
		return
	}
	if localFile.revisions == nil {
		return
	}
	remoteHas := make(map[string]bool, len(rec.Deltas))
	for _, d := range rec.Deltas {
		remoteHas[d.Revision.String()] = true
	}
	for _, local := range localFile.revisions.Values() {
		if !remoteHas[local.String()] {
			croak("%s: local revision %s not present in remote log; leaving it untouched", rec.Info.WorkingFile, local)
		}
	}
}
