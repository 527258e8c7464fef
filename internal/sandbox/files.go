package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const patchFileName = "bookreplay-listing.patch"

// CommitFiles returns the sorted paths a commit changes relative to its first
// parent. Renames contribute both paths.
func (t *Tree) CommitFiles(h plumbing.Hash) ([]string, error) {
	c, err := t.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		p, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errObjectLookup, err)
		}
		if parentTree, err = p.Tree(); err != nil {
			return nil, fmt.Errorf("%w: %v", errObjectLookup, err)
		}
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	set := map[string]struct{}{}
	for _, ch := range changes {
		if ch.From.Name != "" {
			set[ch.From.Name] = struct{}{}
		}
		if ch.To.Name != "" {
			set[ch.To.Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// FileAt returns the content of path at commit h. The boolean is false when
// the path does not exist there.
func (t *Tree) FileAt(h plumbing.Hash, path string) (string, bool, error) {
	c, err := t.repo.CommitObject(h)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	f, err := c.File(filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	s, err := f.Contents()
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	return s, true, nil
}

// ReadFile returns the working copy content of path. A symlink reads as its
// target, the way git stores it.
func (t *Tree) ReadFile(path string) (string, bool, error) {
	dst := t.abs(path)
	if fi, err := os.Lstat(dst); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(dst)
		if err != nil {
			return "", false, err
		}
		return filepath.ToSlash(target), true, nil
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

// RestoreFiles writes the committed content of each path into the working
// copy, removing paths that do not exist at h.
func (t *Tree) RestoreFiles(h plumbing.Hash, paths []string) error {
	c, err := t.repo.CommitObject(h)
	if err != nil {
		return fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	for _, p := range paths {
		dst := t.abs(p)
		f, err := c.File(filepath.ToSlash(p))
		if errors.Is(err, object.ErrFileNotFound) {
			if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", errObjectLookup, err)
		}
		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("%w: %v", errObjectLookup, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := writeBlob(dst, f.Mode, content); err != nil {
			return err
		}
	}
	return nil
}

// ApplyPatch applies a unified diff to the working copy with git apply.
func (t *Tree) ApplyPatch(ctx context.Context, diff string) error {
	if !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	patch := filepath.Join(t.dir, ".git", patchFileName)
	if err := os.WriteFile(patch, []byte(diff), 0o644); err != nil {
		return err
	}
	defer func() { _ = os.Remove(patch) }()
	res, err := t.RunCommand(ctx, "git apply --whitespace=nowarn .git/"+patchFileName)
	if err != nil {
		return err
	}
	if !res.Success() {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", res.ExitCode)
		}
		return fmt.Errorf("git apply rejected the diff: %s", msg)
	}
	return nil
}

// writeBlob materialises one committed entry: a symlink for link blobs,
// otherwise a file whose executable bit follows the commit.
func writeBlob(dst string, mode filemode.FileMode, content string) error {
	if fi, err := os.Lstat(dst); err == nil && (mode == filemode.Symlink || fi.Mode()&os.ModeSymlink != 0) {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	if mode == filemode.Symlink {
		return os.Symlink(filepath.FromSlash(content), dst)
	}
	perm := os.FileMode(0o644)
	if mode == filemode.Executable {
		perm = 0o755
	}
	if err := os.WriteFile(dst, []byte(content), perm); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}

func (t *Tree) abs(p string) string {
	return filepath.Join(t.dir, filepath.FromSlash(p))
}
