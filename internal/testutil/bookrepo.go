package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Step is one commit of a book example repository.
type Step struct {
	// Label is written into the commit message as --label-- when set.
	Label   string
	Message string
	Files   map[string]string
	// Symlinks maps a link path to its target.
	Symlinks   map[string]string
	Executable []string
	Delete     []string
	// Branch, when set, points a branch at the resulting commit.
	Branch string
}

// BookRepo is a throwaway example repository built with go-git.
type BookRepo struct {
	Dir     string
	Commits []plumbing.Hash
	Labels  map[string]plumbing.Hash
}

// NewBookRepo creates a repository under t.TempDir() and commits steps in order.
func NewBookRepo(t *testing.T, steps []Step) *BookRepo {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "book-example")
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("git init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	br := &BookRepo{Dir: dir, Labels: map[string]plumbing.Hash{}}
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range steps {
		for p, content := range s.Files {
			WriteFile(t, dir, p, content)
		}
		for p, target := range s.Symlinks {
			abs := filepath.Join(dir, filepath.FromSlash(p))
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			_ = os.Remove(abs)
			if err := os.Symlink(target, abs); err != nil {
				t.Fatalf("symlink %s: %v", p, err)
			}
		}
		for _, p := range s.Executable {
			if err := os.Chmod(filepath.Join(dir, filepath.FromSlash(p)), 0o755); err != nil {
				t.Fatalf("chmod %s: %v", p, err)
			}
		}
		for _, p := range s.Delete {
			if err := os.Remove(filepath.Join(dir, filepath.FromSlash(p))); err != nil {
				t.Fatalf("remove %s: %v", p, err)
			}
		}
		if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			t.Fatalf("git add: %v", err)
		}
		msg := s.Message
		if s.Label != "" {
			msg = "--" + s.Label + "-- " + msg
		}
		if msg == "" {
			msg = "step"
		}
		h, err := wt.Commit(msg, &git.CommitOptions{
			All:               true,
			AllowEmptyCommits: true,
			Author: &object.Signature{
				Name:  "Book Author",
				Email: "author@example.com",
				When:  when.Add(time.Duration(i) * time.Minute),
			},
		})
		if err != nil {
			t.Fatalf("git commit: %v", err)
		}
		br.Commits = append(br.Commits, h)
		if s.Label != "" {
			br.Labels[s.Label] = h
		}
		if s.Branch != "" {
			ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(s.Branch), h)
			if err := repo.Storer.SetReference(ref); err != nil {
				t.Fatalf("branch %s: %v", s.Branch, err)
			}
		}
	}
	return br
}

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}
