package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"
)

// StartRef returns the reference of the state before the chapter begins.
func (t *Tree) StartRef() string {
	if t.opts.StartRef != "" {
		return t.opts.StartRef
	}
	return fmt.Sprintf(t.opts.BranchTemplate, t.opts.Chapter-1)
}

// EndRef returns the reference of the chapter's canonical end state.
func (t *Tree) EndRef() string {
	if t.opts.EndRef != "" {
		return t.opts.EndRef
	}
	return fmt.Sprintf(t.opts.BranchTemplate, t.opts.Chapter)
}

// StartWithCheckout moves the working copy to the pre-chapter commit.
func (t *Tree) StartWithCheckout(ctx context.Context) error {
	ref := t.StartRef()
	h, err := t.ResolveRef(ref)
	if err != nil {
		return &CheckoutError{Ref: ref, Err: err}
	}
	if err := t.checkout(ctx, h); err != nil {
		return &CheckoutError{Ref: ref, Err: err}
	}
	t.log.Info("checked out chapter start", zap.String("ref", ref), zap.String("commit", h.String()))
	return nil
}

// Checkout moves the working copy to an arbitrary commit. It is used by the
// debug fast-forward path, never by a normal replay.
func (t *Tree) Checkout(ctx context.Context, h plumbing.Hash) error {
	if err := t.checkout(ctx, h); err != nil {
		return &CheckoutError{Ref: h.String(), Err: err}
	}
	t.log.Warn("checked out commit directly", zap.String("commit", h.String()))
	return nil
}

func (t *Tree) checkout(ctx context.Context, h plumbing.Hash) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wt, err := t.worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: h, Force: true})
}

// ResolveRef resolves a branch, tag, remote branch or revision expression to
// a commit hash.
func (t *Tree) ResolveRef(ref string) (plumbing.Hash, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return plumbing.ZeroHash, errRefNotFound
	}
	for _, cand := range refCandidates(ref) {
		h, err := t.repo.ResolveRevision(plumbing.Revision(cand))
		if err == nil && h != nil {
			if _, err := t.repo.CommitObject(*h); err == nil {
				return *h, nil
			}
			if tag, err := t.repo.TagObject(*h); err == nil {
				if c, err := tag.Commit(); err == nil {
					return c.Hash, nil
				}
			}
		}
	}
	return plumbing.ZeroHash, errRefNotFound
}

func refCandidates(ref string) []string {
	if strings.HasPrefix(ref, "refs/") {
		return []string{ref}
	}
	return []string{
		ref,
		"refs/remotes/origin/" + ref,
		"refs/tags/" + ref,
	}
}

// CommitSpec resolves a label such as ch10l008-1 to a commit. Labels are found
// in commit messages as --label--, searching back from the chapter end state;
// the most recent match wins. A ref with the label's name is also accepted.
func (t *Tree) CommitSpec(label string) (plumbing.Hash, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return plumbing.ZeroHash, &UnknownLabelError{Label: label}
	}
	if end, err := t.ResolveRef(t.EndRef()); err == nil {
		if h, ok, err := t.findLabel(end, label); err != nil {
			return plumbing.ZeroHash, err
		} else if ok {
			return h, nil
		}
	}
	if h, err := t.ResolveRef(label); err == nil {
		return h, nil
	}
	return plumbing.ZeroHash, &UnknownLabelError{Label: label}
}

func (t *Tree) findLabel(from plumbing.Hash, label string) (plumbing.Hash, bool, error) {
	iter, err := t.repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	defer iter.Close()
	marker := "--" + label + "--"
	var found plumbing.Hash
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.Contains(c.Message, marker) {
			found = c.Hash
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return plumbing.ZeroHash, false, fmt.Errorf("%w: %v", errObjectLookup, err)
	}
	return found, !found.IsZero(), nil
}
