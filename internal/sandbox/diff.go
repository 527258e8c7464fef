package sandbox

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flarebyte/bookreplay/internal/textdiff"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Delta statuses, from the working copy's point of view.
const (
	DeltaAdded    = "added"
	DeltaRemoved  = "removed"
	DeltaModified = "modified"
)

// FileDelta is one path that differs from the expected commit.
type FileDelta struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Patch  string `json:"patch,omitempty"`
}

// DiffReport is the structural difference between the working copy and a
// commit. An empty report means they match.
type DiffReport struct {
	Ref    string      `json:"ref"`
	Commit string      `json:"commit"`
	Deltas []FileDelta `json:"deltas"`
}

// Empty reports whether no path differs.
func (r DiffReport) Empty() bool { return len(r.Deltas) == 0 }

// DiffAgainst compares the working copy content with the tree of ref. Paths
// matched by .gitignore files or the configured ignore patterns are skipped
// on both sides.
func (t *Tree) DiffAgainst(ref string) (DiffReport, error) {
	h, err := t.ResolveRef(ref)
	if err != nil {
		return DiffReport{}, &CheckoutError{Ref: ref, Err: err}
	}
	c, err := t.repo.CommitObject(h)
	if err != nil {
		return DiffReport{}, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return DiffReport{}, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	m := t.ignoreMatcher()

	expected := map[string]entry{}
	err = tree.Files().ForEach(func(f *object.File) error {
		if ignored(m, f.Name, false) {
			return nil
		}
		s, err := f.Contents()
		if err != nil {
			return err
		}
		expected[f.Name] = entry{content: s, mode: normalizeMode(f.Mode)}
		return nil
	})
	if err != nil {
		return DiffReport{}, fmt.Errorf("%w: %v", errObjectLookup, err)
	}

	actual, err := t.workingFiles(m)
	if err != nil {
		return DiffReport{}, err
	}

	report := DiffReport{Ref: ref, Commit: h.String(), Deltas: []FileDelta{}}
	for _, p := range unionKeys(expected, actual) {
		want, inTree := expected[p]
		got, onDisk := actual[p]
		switch {
		case inTree && !onDisk:
			report.Deltas = append(report.Deltas, FileDelta{Path: p, Status: DeltaRemoved, Patch: textdiff.Lines(want.content, "")})
		case !inTree && onDisk:
			report.Deltas = append(report.Deltas, FileDelta{Path: p, Status: DeltaAdded, Patch: textdiff.Lines("", got.content)})
		case want != got:
			report.Deltas = append(report.Deltas, FileDelta{Path: p, Status: DeltaModified, Patch: entryPatch(want, got)})
		}
	}
	return report, nil
}

// entry is one path as git sees it: blob content plus a regular, executable
// or symlink mode. A symlink's content is its target.
type entry struct {
	content string
	mode    filemode.FileMode
}

func normalizeMode(m filemode.FileMode) filemode.FileMode {
	switch m {
	case filemode.Executable, filemode.Symlink:
		return m
	default:
		return filemode.Regular
	}
}

func entryPatch(want, got entry) string {
	var b strings.Builder
	if want.mode != got.mode {
		fmt.Fprintf(&b, "old mode %s\nnew mode %s\n", want.mode, got.mode)
	}
	if want.content != got.content {
		b.WriteString(textdiff.Lines(want.content, got.content))
	}
	return b.String()
}

// workingFiles reads every regular file and symlink of the working copy
// except .git and ignored paths, keyed by slash-separated relative path.
func (t *Tree) workingFiles(m gitignore.Matcher) (map[string]entry, error) {
	out := map[string]entry{}
	err := filepath.WalkDir(t.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(t.dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if rel == ".git" || ignored(m, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored(m, rel, false) {
			return nil
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			out[rel] = entry{content: filepath.ToSlash(target), mode: filemode.Symlink}
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			mode := filemode.Regular
			if info.Mode().Perm()&0o111 != 0 {
				mode = filemode.Executable
			}
			out[rel] = entry{content: string(b), mode: mode}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sandbox: walk working copy: %w", err)
	}
	return out, nil
}

func unionKeys[V any](a, b map[string]V) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		set[k] = struct{}{}
	}
	for k := range b {
		set[k] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
