package sandbox

import "go.uber.org/zap"

const (
	defaultShellProgram         = "sh"
	defaultShellTermGraceMs     = 500
	defaultShellCaptureMaxBytes = 1 << 20
	defaultBranchTemplate       = "chapter_%02d"
)

// ShellOptions controls how RunCommand starts processes.
type ShellOptions struct {
	Program string
	Env     map[string]string
	// TimeoutMs <= 0 means no timeout.
	TimeoutMs        int
	TermGraceMs      int
	CaptureMaxBytes  int
	KillProcessGroup bool
}

// Options describes one sandbox instance.
type Options struct {
	// Source is the book's example repository (path or URL).
	Source  string
	Chapter int
	// Root is the parent directory for the working copy; empty means the OS temp dir.
	Root string
	// RunID is embedded in the working copy directory name.
	RunID          string
	BranchTemplate string
	StartRef       string
	EndRef         string
	Ignore         []string
	Keep           bool
	Shell          ShellOptions
	Logger         *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.BranchTemplate == "" {
		o.BranchTemplate = defaultBranchTemplate
	}
	if o.Shell.Program == "" {
		o.Shell.Program = defaultShellProgram
	}
	if o.Shell.TermGraceMs <= 0 {
		o.Shell.TermGraceMs = defaultShellTermGraceMs
	}
	if o.Shell.CaptureMaxBytes <= 0 {
		o.Shell.CaptureMaxBytes = defaultShellCaptureMaxBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
