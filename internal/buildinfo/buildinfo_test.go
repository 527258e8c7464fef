package buildinfo

import (
	"testing"

	"github.com/flarebyte/bookreplay/cli"
)

func TestSummary(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	oldCliVersion, oldCliDate := cli.Version, cli.Date
	defer func() {
		Version, Commit, Date = oldVersion, oldCommit, oldDate
		cli.Version, cli.Date = oldCliVersion, oldCliDate
	}()

	cases := []struct {
		version, commit, date, cliVersion, cliDate string
		want                                       string
	}{
		{"", "", "", "", "", "dev"},
		{"1.2.0", "", "", "", "", "1.2.0"},
		{"", "", "", "0.9.1", "2026-02-09", "0.9.1 (date=2026-02-09)"},
		{"1.2.0", "0123456789abcdef", "2026-03-01", "", "", "1.2.0 (commit=0123456, date=2026-03-01)"},
	}
	for _, tc := range cases {
		Version, Commit, Date = tc.version, tc.commit, tc.date
		cli.Version, cli.Date = tc.cliVersion, tc.cliDate
		if got := Summary(); got != tc.want {
			t.Fatalf("Summary()=%q want %q", got, tc.want)
		}
	}
}

func TestCurrent_Runtime(t *testing.T) {
	info := Current()
	if info.Go == "" || info.OS == "" || info.Arch == "" || info.Version == "" {
		t.Fatalf("incomplete info: %+v", info)
	}
}
