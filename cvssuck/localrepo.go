package main

import (
	"path/filepath"

	cmap "github.com/orcaman/concurrent-map"
)

// LocalRepository is the arena owning every LocalDirectory under one
// (topdir, lockdir) pair (spec.md §3 "LocalRepository / LocalDirectory /
// LocalFile"). Per spec.md §9's own redesign note, the source's
// weak-reference-with-reclaim cache collapses here to plain hash-map
// interning. It is backed by a concurrent map, the tool the teacher's own
// svnread.go names for an interning cache without ever wiring it in; in
// this package only the serial directory walk reads or writes it.
type LocalRepository struct {
	topDir  string
	lockDir string
	runner  commandRunner

	directories cmap.ConcurrentMap // relative path -> *LocalDirectory
}

// NewLocalRepository opens (without creating) the local mirror rooted at
// topDir, with lock files kept in lockDir (which may alias topDir).
func NewLocalRepository(topDir, lockDir string, runner commandRunner) *LocalRepository {
	return &LocalRepository{
		topDir:      topDir,
		lockDir:     lockDir,
		runner:      runner,
		directories: cmap.New(),
	}
}

// Directory returns the LocalDirectory for relPath, creating and interning
// it on first use (spec.md §3 "Ownership & lifecycle": LocalRepository
// exclusively owns LocalDirectory instances).
func (repo *LocalRepository) Directory(relPath string) *LocalDirectory {
	if existing, ok := repo.directories.Get(relPath); ok {
		return existing.(*LocalDirectory)
	}
	dir := &LocalDirectory{
		repo:    repo,
		relPath: relPath,
		path:    filepath.Join(repo.topDir, relPath),
		lock:    newDirLock(filepath.Join(repo.lockDir, relPath)),
		files:   cmap.New(),
	}
	// SetIfAbsent collapses a race between two callers creating the same
	// directory entry to whichever one wins; both constructed *LocalDirectory
	// values are equivalent (same path, fresh lock, empty cache), so losing
	// the race is harmless.
	repo.directories.SetIfAbsent(relPath, dir)
	existing, _ := repo.directories.Get(relPath)
	return existing.(*LocalDirectory)
}

// Reset drops every cached LocalDirectory/LocalFile entry. This is the
// explicit, Go-idiomatic stand-in for spec.md §4.6's "fork a child to
// process the current directory's files" bound on per-directory resource
// growth (see DESIGN.md): instead of an actual fork(2), the orchestrator
// calls Reset between directories so cached rlog output and file handles
// from directory N cannot accumulate into directory N+1's memory.
func (repo *LocalRepository) Reset() {
	repo.directories = cmap.New()
}

// LocalDirectory is one directory of the local mirror: a lock, and the
// LocalFile cache it exclusively owns (spec.md §3 "Ownership & lifecycle").
type LocalDirectory struct {
	repo    *LocalRepository
	relPath string
	path    string // topdir-rooted filesystem path
	lock    *dirLock
	files   cmap.ConcurrentMap // base name -> *LocalFile
}

// File returns the LocalFile for the given working-file base name,
// creating and interning it on first use.
func (d *LocalDirectory) File(name string) *LocalFile {
	if existing, ok := d.files.Get(name); ok {
		return existing.(*LocalFile)
	}
	lf := &LocalFile{dir: d, name: name, runner: d.repo.runner}
	d.files.SetIfAbsent(name, lf)
	existing, _ := d.files.Get(name)
	return existing.(*LocalFile)
}

// ReadLock and WriteLock delegate to the directory's dirLock (spec.md
// §4.3).
func (d *LocalDirectory) ReadLock(body func() error) error  { return d.lock.ReadLock(body) }
func (d *LocalDirectory) WriteLock(body func() error) error { return d.lock.WriteLock(body) }

// age is the cache-invalidation counter LocalFile compares its own cached
// age against (spec.md §3 "age counter").
func (d *LocalDirectory) age() uint64 { return d.lock.age }

// ensureDirExists makes the directory (and its lock-dir counterpart, when
// different) so a lock attempt and a later `ci` have somewhere to write.
func (d *LocalDirectory) ensureDirExists(debug DebugFlags) error {
	if err := ensureDir(d.path, debug); err != nil {
		return err
	}
	if d.lock.dir != d.path {
		return ensureDir(d.lock.dir, debug)
	}
	return nil
}
