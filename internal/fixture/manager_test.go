package fixture

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/flarebyte/bookreplay/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baselineSQL = `-- lists schema
CREATE TABLE lists_item (
    id INTEGER PRIMARY KEY,
    text TEXT NOT NULL
);
INSERT INTO lists_item (text) VALUES ('seed');
`

type fakeRunner struct {
	commands []string
	result   sandbox.Result
	err      error
}

func (f *fakeRunner) RunCommand(_ context.Context, command string) (sandbox.Result, error) {
	f.commands = append(f.commands, command)
	return f.result, f.err
}

func countItems(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM lists_item").Scan(&n))
	return n
}

func TestPrepDatabase_BuildsBaseline(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Options{Enabled: true, Database: "db.sqlite3", Baseline: baselineSQL, Dir: dir}, nil)

	require.NoError(t, m.PrepDatabase(context.Background()))
	assert.Equal(t, filepath.Join(dir, "db.sqlite3"), m.DatabasePath())
	assert.Equal(t, 1, countItems(t, m.DatabasePath()))
}

func TestPrepDatabase_IdempotentAfterResidue(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Options{Enabled: true, Database: "db.sqlite3", Baseline: baselineSQL, Dir: dir}, nil)
	ctx := context.Background()
	require.NoError(t, m.PrepDatabase(ctx))

	db, err := sql.Open("sqlite", m.DatabasePath())
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO lists_item (text) VALUES ('residue'), ('more residue')")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Equal(t, 3, countItems(t, m.DatabasePath()))

	require.NoError(t, m.PrepDatabase(ctx))
	assert.Equal(t, 1, countItems(t, m.DatabasePath()))
}

func TestPrepDatabase_BadBaseline(t *testing.T) {
	m := NewManager(Options{Enabled: true, Database: "db.sqlite3", Baseline: "CREATE TABL broken;", Dir: t.TempDir()}, nil)
	err := m.PrepDatabase(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFixtureReset))
	var fe *FixtureResetError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "baseline", fe.Step)
}

func TestPrepDatabase_ResetCommand(t *testing.T) {
	runner := &fakeRunner{result: sandbox.Result{ExitCode: 0}}
	m := NewManager(Options{Enabled: true, ResetCommand: "python manage.py migrate --noinput"}, runner)
	require.NoError(t, m.PrepDatabase(context.Background()))
	assert.Equal(t, []string{"python manage.py migrate --noinput"}, runner.commands)

	runner.result = sandbox.Result{ExitCode: 2, Output: "no such table\n"}
	err := m.PrepDatabase(context.Background())
	require.ErrorIs(t, err, ErrFixtureReset)
	assert.Contains(t, err.Error(), "exit status 2: no such table")

	runner.err = errors.New("program sh not found")
	require.ErrorIs(t, m.PrepDatabase(context.Background()), ErrFixtureReset)
}

func TestPrepDatabase_ResetCommandWithoutRunner(t *testing.T) {
	m := NewManager(Options{Enabled: true, ResetCommand: "true"}, nil)
	require.ErrorIs(t, m.PrepDatabase(context.Background()), ErrFixtureReset)
}

func TestPrepDatabase_Disabled(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(Options{Enabled: false, Database: "db.sqlite3", Dir: dir}, nil)
	require.NoError(t, m.PrepDatabase(context.Background()))
	_, err := os.Stat(filepath.Join(dir, "db.sqlite3"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrepDatabase_TriggerBaseline(t *testing.T) {
	const script = `CREATE TABLE counter (n INTEGER NOT NULL DEFAULT 0);
INSERT INTO counter (n) VALUES (0);
CREATE TABLE lists_item (id INTEGER PRIMARY KEY, text TEXT NOT NULL);
CREATE TRIGGER bump AFTER INSERT ON lists_item
BEGIN
  UPDATE counter SET n = n + 1;
END;
INSERT INTO lists_item (text) VALUES ('a;
b');
`
	dir := t.TempDir()
	m := NewManager(Options{Enabled: true, Database: "db.sqlite3", Baseline: script, Dir: dir}, nil)
	require.NoError(t, m.PrepDatabase(context.Background()))

	db, err := sql.Open("sqlite", m.DatabasePath())
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT n FROM counter").Scan(&n))
	assert.Equal(t, 1, n)
	var text string
	require.NoError(t, db.QueryRow("SELECT text FROM lists_item").Scan(&text))
	assert.Equal(t, "a;\nb", text)
}
