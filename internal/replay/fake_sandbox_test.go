package replay

import (
	"context"
	"errors"
	"sort"

	"github.com/flarebyte/bookreplay/internal/sandbox"
	"github.com/go-git/go-git/v5/plumbing"
)

// fakeSandbox is an in-memory Sandbox. Commands answer from results, commits
// are maps of touched file contents, and the working tree is a plain map.
type fakeSandbox struct {
	results  map[string]sandbox.Result
	runErr   error
	commits  map[string]map[string]string
	tree     map[string]string
	patchErr error

	commands  []string
	patches   []string
	checkouts []plumbing.Hash
}

func newFakeSandbox() *fakeSandbox {
	return &fakeSandbox{
		results: map[string]sandbox.Result{},
		commits: map[string]map[string]string{},
		tree:    map[string]string{},
	}
}

func labelHash(label string) plumbing.Hash {
	return plumbing.ComputeHash(plumbing.CommitObject, []byte(label))
}

func (f *fakeSandbox) labelOf(h plumbing.Hash) (string, bool) {
	for l := range f.commits {
		if labelHash(l) == h {
			return l, true
		}
	}
	return "", false
}

func (f *fakeSandbox) RunCommand(ctx context.Context, command string) (sandbox.Result, error) {
	if err := ctx.Err(); err != nil {
		return sandbox.Result{ExitCode: -2}, err
	}
	f.commands = append(f.commands, command)
	if f.runErr != nil {
		return sandbox.Result{ExitCode: -1}, f.runErr
	}
	return f.results[command], nil
}

func (f *fakeSandbox) CommitSpec(label string) (plumbing.Hash, error) {
	if _, ok := f.commits[label]; !ok {
		return plumbing.ZeroHash, &sandbox.UnknownLabelError{Label: label}
	}
	return labelHash(label), nil
}

func (f *fakeSandbox) CommitFiles(h plumbing.Hash) ([]string, error) {
	l, ok := f.labelOf(h)
	if !ok {
		return nil, errors.New("no such commit")
	}
	var out []string
	for p := range f.commits[l] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeSandbox) FileAt(h plumbing.Hash, path string) (string, bool, error) {
	l, ok := f.labelOf(h)
	if !ok {
		return "", false, errors.New("no such commit")
	}
	s, ok := f.commits[l][path]
	return s, ok, nil
}

func (f *fakeSandbox) ReadFile(path string) (string, bool, error) {
	s, ok := f.tree[path]
	return s, ok, nil
}

func (f *fakeSandbox) RestoreFiles(h plumbing.Hash, paths []string) error {
	l, ok := f.labelOf(h)
	if !ok {
		return errors.New("no such commit")
	}
	for _, p := range paths {
		f.tree[p] = f.commits[l][p]
	}
	return nil
}

func (f *fakeSandbox) ApplyPatch(_ context.Context, diff string) error {
	f.patches = append(f.patches, diff)
	return f.patchErr
}

func (f *fakeSandbox) Checkout(_ context.Context, h plumbing.Hash) error {
	f.checkouts = append(f.checkouts, h)
	return nil
}

type fakeDiffer struct {
	report sandbox.DiffReport
	refs   []string
}

func (d *fakeDiffer) DiffAgainst(ref string) (sandbox.DiffReport, error) {
	d.refs = append(d.refs, ref)
	return d.report, nil
}
