// Package sandbox provides a disposable git working copy in which a chapter's
// listings are replayed.
package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

// Tree is one chapter's working copy. It owns its directory; nothing else
// writes there. A Tree is not safe for concurrent use.
type Tree struct {
	dir  string
	repo *git.Repository
	opts Options
	log  *zap.Logger

	extraIgnore []gitignore.Pattern
}

// New clones opts.Source into a fresh directory.
func New(ctx context.Context, opts Options) (*Tree, error) {
	opts = opts.withDefaults()
	if opts.Source == "" {
		return nil, fmt.Errorf("sandbox: missing source repository")
	}
	prefix := "bookreplay-"
	if opts.RunID != "" {
		prefix += opts.RunID + "-"
	}
	dir, err := os.MkdirTemp(opts.Root, prefix)
	if err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  cloneURL(opts.Source),
		Tags: git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("sandbox: %w: %v", errCloneFailed, err)
	}
	t := &Tree{
		dir:         dir,
		repo:        repo,
		opts:        opts,
		log:         opts.Logger.With(zap.String("sandbox", dir)),
		extraIgnore: parseIgnorePatterns(opts.Ignore),
	}
	t.log.Debug("sandbox created", zap.String("source", opts.Source))
	return t, nil
}

// Dir returns the working copy directory.
func (t *Tree) Dir() string { return t.dir }

// Close discards the working copy unless Keep is set.
func (t *Tree) Close() error {
	if t == nil || t.dir == "" {
		return nil
	}
	if t.opts.Keep {
		t.log.Info("sandbox kept")
		return nil
	}
	return os.RemoveAll(t.dir)
}

func (t *Tree) worktree() (*git.Worktree, error) {
	wt, err := t.repo.Worktree()
	if err != nil {
		return nil, errWorktreeFailed
	}
	return wt, nil
}

// cloneURL makes local paths absolute so the file transport accepts them.
func cloneURL(src string) string {
	if st, err := os.Stat(src); err == nil && st.IsDir() {
		if abs, err := filepath.Abs(src); err == nil {
			return abs
		}
	}
	return src
}
