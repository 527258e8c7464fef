package replay

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/flarebyte/bookreplay/internal/config"
	"github.com/flarebyte/bookreplay/internal/fixture"
	"github.com/flarebyte/bookreplay/internal/listing"
	"github.com/flarebyte/bookreplay/internal/report"
	"github.com/flarebyte/bookreplay/internal/sandbox"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RunOptions carries the process-level collaborators of RunChapter.
type RunOptions struct {
	// Fs reads the listings manifest and writes the report; nil means the OS.
	Fs     afero.Fs
	Logger *zap.Logger
	// SandboxRoot is the parent of the working copy; empty means the OS temp dir.
	SandboxRoot string
	Now         func() time.Time
}

// RunChapter replays one chapter end to end: classify the manifest, clone
// the sandbox, check out the chapter start, reset the fixture, walk every
// listing, then verify full consumption and the final tree. The report is
// returned even when err is non-nil.
func RunChapter(ctx context.Context, cfg config.Chapter, opts RunOptions) (report.Report, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	started := opts.Now()
	rep := report.Report{
		RunID:     report.NewRunID(started),
		Chapter:   cfg.Chapter,
		StartedAt: started.UTC(),
	}
	log := opts.Logger.With(zap.Int("chapter", cfg.Chapter), zap.String("run_id", rep.RunID))

	r := &chapterRun{cfg: cfg, opts: opts, log: log, rep: &rep}
	err := r.run(ctx)

	if r.cursor != nil {
		rep.Listings = r.cursor.Outcomes()
		rep.FastForwarded = r.cursor.FastForwarded()
	}
	rep.FinishedAt = opts.Now().UTC()
	rep.Passed = err == nil
	if err != nil {
		rep.Error = err.Error()
		log.Error("chapter failed", zap.Error(err))
	} else {
		log.Info("chapter passed", zap.Int("listings", len(rep.Listings)))
	}

	if cfg.Output.HasReport && cfg.Output.Report != "" {
		if werr := report.Write(opts.Fs, cfg.Output.Report, rep); werr != nil {
			if err == nil {
				return rep, werr
			}
			log.Warn("report not written", zap.Error(werr))
		}
	}
	return rep, err
}

// chapterRun holds the state RunChapter reports on after the replay ends.
type chapterRun struct {
	cfg    config.Chapter
	opts   RunOptions
	log    *zap.Logger
	rep    *report.Report
	cursor *Cursor
}

func (r *chapterRun) run(ctx context.Context) error {
	cfg, opts, log := r.cfg, r.opts, r.log
	manifest, err := listing.LoadManifest(opts.Fs, cfg.Listings)
	if err != nil {
		return err
	}
	if manifest.Chapter != cfg.Chapter {
		return fmt.Errorf("listings are for chapter %d, config is for chapter %d", manifest.Chapter, cfg.Chapter)
	}
	listings, err := listing.Classifier{TestCommand: cfg.Tests.Command}.ClassifyAll(manifest.Listings)
	if err != nil {
		return err
	}
	if cfg.Sanity.HasKinds {
		if err := listing.CheckKinds(listings, cfg.Sanity.Kinds); err != nil {
			return err
		}
	}
	var cmp Comparer
	if cfg.Output.HasNormalize && strings.TrimSpace(cfg.Output.Normalize) != "" {
		n, err := NewLuaNormalizer(cfg.Output.Normalize)
		if err != nil {
			return err
		}
		cmp.Normalizer = n
	}

	tree, err := sandbox.New(ctx, sandboxOptions(cfg, opts, r.rep.RunID, log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tree.Close(); cerr != nil {
			log.Warn("sandbox not removed", zap.String("dir", tree.Dir()), zap.Error(cerr))
		}
	}()

	if err := tree.StartWithCheckout(ctx); err != nil {
		return err
	}
	// The fixture lives inside the working copy, so it is reset once the
	// start commit is in place.
	fx := fixture.NewManager(fixture.Options{
		Enabled:      cfg.Fixture.Enabled,
		Database:     cfg.Fixture.Database,
		Baseline:     cfg.Fixture.Baseline,
		ResetCommand: cfg.Fixture.ResetCommand,
		Dir:          tree.Dir(),
		Logger:       log,
	}, tree)
	if err := fx.PrepDatabase(ctx); err != nil {
		return err
	}

	c := New(listings, tree, Options{
		TestCommand: cfg.Tests.Command,
		Comparer:    cmp,
		Debug:       cfg.Debug.FastForward.Enabled,
		Logger:      log,
	})
	r.cursor = c
	if ff := cfg.Debug.FastForward; ff.Enabled && ff.HasPosition && ff.HasLabel {
		if err := c.DebugFastForward(ctx, ff.Position, ff.Label); err != nil {
			return err
		}
	}
	if err := c.Run(ctx); err != nil {
		return err
	}
	if err := AssertAllListingsChecked(c); err != nil {
		return err
	}
	diff, err := CheckFinalDiff(c, tree, cfg.Chapter, tree.EndRef())
	for _, d := range diff.Deltas {
		r.rep.Deltas = append(r.rep.Deltas, report.Delta{Path: d.Path, Status: d.Status, Patch: d.Patch})
	}
	return err
}

func sandboxOptions(cfg config.Chapter, opts RunOptions, runID string, log *zap.Logger) sandbox.Options {
	return sandbox.Options{
		Source:         cfg.Repo.Source,
		Chapter:        cfg.Chapter,
		Root:           opts.SandboxRoot,
		RunID:          runID,
		BranchTemplate: cfg.Repo.BranchTemplate,
		StartRef:       cfg.Repo.StartRef,
		EndRef:         cfg.Repo.EndRef,
		Ignore:         append(append([]string(nil), cfg.Repo.Ignore...), fixtureIgnore(cfg.Fixture)...),
		Keep:           cfg.Repo.Keep,
		Shell: sandbox.ShellOptions{
			Program:          cfg.Shell.Program,
			Env:              cfg.Shell.Env,
			TimeoutMs:        cfg.Shell.TimeoutMs,
			TermGraceMs:      cfg.Shell.TermGraceMs,
			CaptureMaxBytes:  cfg.Shell.CaptureMaxBytes,
			KillProcessGroup: !cfg.Shell.HasKillPG || cfg.Shell.KillProcessGroup,
		},
		Logger: log,
	}
}

// fixtureIgnore keeps the fixture database out of the final diff. It sits
// in the working copy but is never part of the book's history.
func fixtureIgnore(f config.Fixture) []string {
	if !f.Enabled || f.Database == "" || filepath.IsAbs(f.Database) {
		return nil
	}
	db := "/" + strings.TrimPrefix(filepath.ToSlash(filepath.Clean(f.Database)), "./")
	out := make([]string, 0, 4)
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		out = append(out, db+suffix)
	}
	return out
}
