package main

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// RCSInfo is the immutable per-file header extracted from `cvs log`/`rlog`
// output (spec.md §3, §4.1).
type RCSInfo struct {
	RCSPath       string // "RCS file:" value, verbatim
	WorkingFile   string // "Working file:" value, last path component only
	Head          Revision
	DefaultBranch Revision // nil if the file has none
	Tags          []TagEntry
	KeywordMode   string // "keyword substitution:" value, e.g. "kv", "o", "b"
	Description   string
}

// TagEntry is one (name, revision) pair from the "symbolic names:" block,
// in the order `cvs log` printed them.
type TagEntry struct {
	Name     string
	Revision Revision
}

// Attic reports whether the RCS path names a file under an Attic/
// subdirectory -- a syntactic test per spec.md §4.2's Attic policy.
func (r *RCSInfo) Attic() bool {
	return strings.Contains(r.RCSPath, "/Attic/") || strings.HasPrefix(r.RCSPath, "Attic/")
}

// DeltaInfo is one immutable revision record from the log (spec.md §3).
type DeltaInfo struct {
	Revision Revision
	Date     string // RCS-style date string, preserved verbatim
	Author   string
	State    string // "dead" or some other state, e.g. "Exp"
	Branches []Revision
	Log      string
}

// IsDead reports whether this delta's state marks the revision as deleted.
func (d *DeltaInfo) IsDead() bool {
	return d.State == "dead"
}

// FileRecord bundles one file's header and ordered deltas, the unit the
// parser hands to its caller once a file's trailing terminator line is seen.
type FileRecord struct {
	Info   *RCSInfo
	Deltas []*DeltaInfo
}

// LogFormatError reports unparsable `log`/`rlog` input (spec.md §7).
func logFormatError(format string, args ...interface{}) *exception {
	return throw(classLogFormat, format, args...)
}

var (
	fileDelimiter   = strings.Repeat("=", 77)
	deltaDelimiter  = strings.Repeat("-", 28)
	rcsFileLine     = regexp.MustCompile(`^RCS file:\s*(.+?)\s*$`)
	workingFileLine = regexp.MustCompile(`^Working file:\s*(.+?)\s*$`)
	headLine        = regexp.MustCompile(`^head:\s*(\S+)\s*$`)
	branchLine      = regexp.MustCompile(`^branch:\s*(\S+)\s*$`)
	symbolicHeader  = regexp.MustCompile(`^symbolic names:\s*$`)
	symbolicEntry   = regexp.MustCompile(`^\s+(\S+):\s*(\S+)\s*$`)
	keywordLine     = regexp.MustCompile(`^keyword substitution:\s*(\S+)\s*$`)
	descriptionLine = regexp.MustCompile(`^description:\s*(.*)$`)
	revisionLine    = regexp.MustCompile(`^revision\s+(\S+)\s*$`)
	dateAuthorLine  = regexp.MustCompile(
		`^date:\s*(\d{4}[/-]\d{2}[/-]\d{2} \d{2}:\d{2}:\d{2})(?:\s*([+-]\d{4}))?;\s*author:\s*([^;]+);\s*state:\s*([^;]+);`)
	branchesLine = regexp.MustCompile(`^branches:\s*(.*?);?\s*$`)
)

// LogParser parses the textual output of `cvs log`/`rlog` (spec.md §4.1).
type LogParser struct{}

// Parse decodes raw into well-formed UTF-8 per §4.1's encoding rule, splits
// it into per-file chunks on the 77-'=' delimiter, and invokes handle once
// per file in the order the log listed them. A malformed file aborts that
// file's parse with a *exception of class classLogFormat; handle is not
// called for it, and parsing continues with the next file in raw. Parse
// then returns the first such exception once every file has been offered.
func (lp *LogParser) Parse(raw []byte, handle func(FileRecord) error) error {
	text := decodeLogText(raw)
	chunks := strings.Split(text, fileDelimiter)
	var firstErr error
	for _, chunk := range chunks {
		chunk = strings.Trim(chunk, "\n")
		if chunk == "" {
			continue
		}
		rec, err := lp.parseFileChunk(chunk)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := handle(rec); err != nil {
			return err
		}
	}
	return firstErr
}

// decodeLogText applies spec.md §4.1's encoding rule: use raw as UTF-8 if
// it already is; otherwise re-interpret it as ISO-8859-1. This is
// deterministic, so cached deltas compare equal across runs.
func decodeLogText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// charmap.ISO8859_1 maps every byte value, so this cannot fail;
		// fall back to a lossy UTF-8 coercion only as a last resort.
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(decoded)
}

func (lp *LogParser) parseFileChunk(chunk string) (FileRecord, error) {
	deltaChunks := strings.Split(chunk, deltaDelimiter)
	header := deltaChunks[0]

	info, err := parseHeader(header)
	if err != nil {
		return FileRecord{}, err
	}

	rec := FileRecord{Info: info}
	for _, dc := range deltaChunks[1:] {
		delta, err := parseDelta(dc)
		if err != nil {
			return FileRecord{}, err
		}
		rec.Deltas = append(rec.Deltas, delta)
	}
	return rec, nil
}

func parseHeader(header string) (*RCSInfo, error) {
	info := &RCSInfo{}
	scanner := bufio.NewScanner(strings.NewReader(header))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	inSymbolic := false
	var descLines []string
	inDescription := false

	for scanner.Scan() {
		line := scanner.Text()

		if inDescription {
			descLines = append(descLines, line)
			continue
		}
		if inSymbolic {
			if m := symbolicEntry.FindStringSubmatch(line); m != nil {
				rev, err := parseRevision(m[2])
				if err != nil {
					return nil, logFormatError("bad symbolic name %q: %v", line, err)
				}
				info.Tags = append(info.Tags, TagEntry{Name: m[1], Revision: rev})
				continue
			}
			inSymbolic = false
		}

		switch {
		case rcsFileLine.MatchString(line):
			info.RCSPath = rcsFileLine.FindStringSubmatch(line)[1]
		case workingFileLine.MatchString(line):
			name := workingFileLine.FindStringSubmatch(line)[1]
			if strings.Contains(name, "/") || name == "." || name == ".." {
				return nil, logFormatError("invalid working file name %q", name)
			}
			info.WorkingFile = name
		case headLine.MatchString(line):
			rev, err := parseRevision(headLine.FindStringSubmatch(line)[1])
			if err != nil {
				return nil, logFormatError("bad head revision: %v", err)
			}
			info.Head = rev
		case branchLine.MatchString(line):
			b := branchLine.FindStringSubmatch(line)[1]
			if b != "" {
				rev, err := parseRevision(b)
				if err != nil {
					return nil, logFormatError("bad default branch: %v", err)
				}
				info.DefaultBranch = rev
			}
		case symbolicHeader.MatchString(line):
			inSymbolic = true
		case keywordLine.MatchString(line):
			info.KeywordMode = keywordLine.FindStringSubmatch(line)[1]
		case descriptionLine.MatchString(line):
			inDescription = true
			descLines = append(descLines, descriptionLine.FindStringSubmatch(line)[1])
		}
	}
	info.Description = strings.TrimRight(strings.Join(descLines, "\n"), "\n")

	if info.RCSPath == "" {
		return nil, logFormatError("missing RCS file: header")
	}
	if info.WorkingFile == "" {
		return nil, logFormatError("missing Working file: header for %s", info.RCSPath)
	}
	if info.Head == nil {
		return nil, logFormatError("missing head: header for %s", info.RCSPath)
	}
	return info, nil
}

func parseDelta(dc string) (*DeltaInfo, error) {
	// The delimiter line's own newline leaves the chunk starting with "\n";
	// the "revision R" line is the first non-empty line.
	dc = strings.TrimLeft(dc, "\n")
	scanner := bufio.NewScanner(strings.NewReader(dc))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !scanner.Scan() {
		return nil, logFormatError("delta chunk has no revision line")
	}
	first := scanner.Text()
	m := revisionLine.FindStringSubmatch(first)
	if m == nil {
		return nil, logFormatError("expected %q, got %q", "revision R", first)
	}
	rev, err := parseRevision(m[1])
	if err != nil {
		return nil, logFormatError("bad delta revision %q: %v", m[1], err)
	}

	if !scanner.Scan() {
		return nil, logFormatError("delta %s is missing its date/author/state line", rev)
	}
	dm := dateAuthorLine.FindStringSubmatch(scanner.Text())
	if dm == nil {
		return nil, logFormatError("delta %s: malformed date/author/state line %q", rev, scanner.Text())
	}
	date := dm[1]
	if dm[2] != "" {
		date = date + " " + dm[2]
	}
	delta := &DeltaInfo{
		Revision: rev,
		Date:     date,
		Author:   strings.TrimSpace(dm[3]),
		State:    strings.TrimSpace(dm[4]),
	}

	var logLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if bm := branchesLine.FindStringSubmatch(line); bm != nil && len(delta.Branches) == 0 && len(logLines) == 0 {
			for _, b := range strings.Split(bm[1], ";") {
				b = strings.TrimSpace(b)
				if b == "" {
					continue
				}
				brev, err := parseRevision(b)
				if err != nil {
					return nil, logFormatError("delta %s: bad branch child %q: %v", rev, b, err)
				}
				delta.Branches = append(delta.Branches, brev)
			}
			continue
		}
		logLines = append(logLines, line)
	}
	delta.Log = strings.TrimRight(strings.Join(logLines, "\n"), "\n")
	return delta, nil
}

// formatLogTime renders a delta as "revision@date" for diagnostics.
func formatLogTime(d *DeltaInfo) string {
	return fmt.Sprintf("%s@%s", d.Revision, d.Date)
}
