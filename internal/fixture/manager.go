// Package fixture resets the external state a chapter depends on.
package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flarebyte/bookreplay/internal/sandbox"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// CommandRunner runs a shell command, typically inside the sandbox.
type CommandRunner interface {
	RunCommand(ctx context.Context, command string) (sandbox.Result, error)
}

// Options configures a Manager.
type Options struct {
	Enabled bool
	// Database is the SQLite file; relative paths resolve against Dir.
	Database string
	// Baseline is SQL executed on a fresh database.
	Baseline string
	// ResetCommand runs after the database is rebuilt.
	ResetCommand string
	Dir          string
	Logger       *zap.Logger
}

// Manager owns the fixture baseline. PrepDatabase may be called any number of
// times; each call starts from nothing.
type Manager struct {
	opts   Options
	runner CommandRunner
	log    *zap.Logger
}

// NewManager returns a Manager. runner may be nil when no reset command is set.
func NewManager(opts Options, runner CommandRunner) *Manager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{opts: opts, runner: runner, log: log}
}

// DatabasePath returns the absolute database location, or "" when unset.
func (m *Manager) DatabasePath() string {
	if m.opts.Database == "" {
		return ""
	}
	if filepath.IsAbs(m.opts.Database) {
		return m.opts.Database
	}
	return filepath.Join(m.opts.Dir, m.opts.Database)
}

// PrepDatabase brings the fixture to its baseline.
func (m *Manager) PrepDatabase(ctx context.Context) error {
	if !m.opts.Enabled {
		m.log.Debug("fixture disabled")
		return nil
	}
	if p := m.DatabasePath(); p != "" {
		if err := removeDatabaseFiles(p); err != nil {
			return &FixtureResetError{Step: "remove", Err: err}
		}
		if err := m.rebuild(ctx, p); err != nil {
			return err
		}
	}
	if cmd := strings.TrimSpace(m.opts.ResetCommand); cmd != "" {
		if m.runner == nil {
			return &FixtureResetError{Step: "reset-command", Err: fmt.Errorf("no command runner")}
		}
		res, err := m.runner.RunCommand(ctx, cmd)
		if err != nil {
			return &FixtureResetError{Step: "reset-command", Err: err}
		}
		if !res.Success() {
			return &FixtureResetError{Step: "reset-command", Err: fmt.Errorf("exit status %d: %s", res.ExitCode, strings.TrimSpace(res.Output))}
		}
	}
	m.log.Info("fixture reset", zap.String("database", m.DatabasePath()))
	return nil
}

func (m *Manager) rebuild(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &FixtureResetError{Step: "open", Err: err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &FixtureResetError{Step: "open", Err: err}
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return &FixtureResetError{Step: "open", Err: err}
	}
	if err := applyBaseline(ctx, db, m.opts.Baseline); err != nil {
		return &FixtureResetError{Step: "baseline", Err: err}
	}
	if err := checkIntegrity(ctx, db); err != nil {
		return &FixtureResetError{Step: "integrity", Err: err}
	}
	return nil
}

// applyBaseline runs the whole script in one transaction. The driver
// executes multi-statement scripts, trigger bodies included.
func applyBaseline(ctx context.Context, db *sql.DB, baseline string) error {
	if strings.TrimSpace(baseline) == "" {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, baseline); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func checkIntegrity(ctx context.Context, db *sql.DB) error {
	var res string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&res); err != nil {
		return err
	}
	if res != "ok" {
		return fmt.Errorf("integrity check: %s", res)
	}
	return nil
}

func removeDatabaseFiles(path string) error {
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
