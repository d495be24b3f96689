package main

import (
	"os"
	"path/filepath"

	shutil "github.com/termie/go-shutil"
)

// shutilCopy copies src to dst, creating dst's parent directory first
// since go-shutil's Copy (unlike cp -a) expects it to exist. Matches the
// teacher's own shutil.Copy(src, dst, false) call in reposurgeon.go.
func shutilCopy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0775); err != nil {
		return err
	}
	_, err := shutil.Copy(src, dst, false)
	return err
}

// ensureDir creates path and any missing parents, honoring the -D
// mkdir/mkdir_exist debug toggles from spec.md §6: mkdir logs every
// directory actually created, mkdir_exist silences the "already exists"
// case that MkdirAll otherwise treats as success anyway.
func ensureDir(path string, debug DebugFlags) error {
	if st, err := os.Stat(path); err == nil {
		if !st.IsDir() {
			return throw(classRCSCommand, "%s exists and is not a directory", path)
		}
		if !debug.MkdirExist && debug.Mkdir {
			logit("mkdir: %s already exists", path)
		}
		return nil
	}
	if debug.Mkdir {
		logit("mkdir -p %s", path)
	}
	return os.MkdirAll(path, 0775)
}

// copyOrEmpty copies src to dst, or creates an empty dst if src does not
// exist. This models spec.md §4.4 step 4's "dead" placeholder: a dead
// revision is checked in from an empty file, not from src at all, but the
// caller decides which path to take; copyOrEmpty exists so commit() has a
// single call whether or not the checkout step produced a contents file
// (a dead revision's getrevision is skipped entirely per spec.md §2).
func copyOrEmpty(src, dst string) error {
	if _, err := os.Stat(src); src == "" || os.IsNotExist(err) {
		f, err := os.Create(dst)
		if err != nil {
			return err
		}
		return f.Close()
	}
	return shutilCopy(src, dst)
}
