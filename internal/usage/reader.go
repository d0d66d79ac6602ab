package usage

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const logExt = ".jsonl"

// FileInfo describes one candidate log file discovered by a scan.
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// FileCache lets a scan reuse previously parsed files. Events must return
// the parsed events for the file, calling parse when it has no usable entry.
// A nil FileCache means every file is parsed directly.
type FileCache interface {
	Events(path string, modTime time.Time, size int64, parse func() []Event) ([]Event, error)
}

// CandidateFiles walks the given roots and returns every log file whose
// modification time is at or after cutoff. Directory entries starting with
// a dot are skipped, as are directories or files that cannot be read: a
// fresh install with no log root at all is a normal state, not an error.
// Results are in sorted path order per root so a scan is reproducible.
func CandidateFiles(roots []string, cutoff time.Time) []FileInfo {
	var files []FileInfo
	for _, root := range roots {
		collectFiles(root, cutoff, &files)
	}
	return files
}

func collectFiles(dir string, cutoff time.Time, out *[]FileInfo) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			collectFiles(path, cutoff, out)
			continue
		}
		if !strings.HasSuffix(name, logExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		*out = append(*out, FileInfo{Path: path, ModTime: info.ModTime(), Size: info.Size()})
	}
}

// ParseFile reads one JSONL log file line by line. Malformed lines are
// skipped independently; an unreadable file yields no events rather than
// an error so a single bad file never aborts the broader scan.
func ParseFile(path string) []Event {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, 10*1024*1024) // 10MB max line size

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if ev, ok := ParseLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Source streams events out of one or more log roots.
type Source struct {
	Roots []string
	Cache FileCache
}

// Events returns all events from files modified at or after cutoff, in
// deterministic file order. The cache, when present, is consulted per file
// and any cache failure falls back to a direct parse.
func (s Source) Events(cutoff time.Time) []Event {
	var all []Event
	for _, fi := range CandidateFiles(s.Roots, cutoff) {
		all = append(all, s.fileEvents(fi)...)
	}
	return all
}

// Timestamps returns only the event timestamps from files modified at or
// after cutoff. Window inference needs nothing more.
func (s Source) Timestamps(cutoff time.Time) []time.Time {
	events := s.Events(cutoff)
	stamps := make([]time.Time, 0, len(events))
	for _, ev := range events {
		stamps = append(stamps, ev.Timestamp)
	}
	return stamps
}

func (s Source) fileEvents(fi FileInfo) []Event {
	if s.Cache == nil {
		return ParseFile(fi.Path)
	}
	events, err := s.Cache.Events(fi.Path, fi.ModTime, fi.Size, func() []Event {
		return ParseFile(fi.Path)
	})
	if err != nil {
		return ParseFile(fi.Path)
	}
	return events
}
