package textdiff

import "testing"

func TestLines_Equal(t *testing.T) {
	if got := Lines("a\nb\n", "a\nb\n"); got != "" {
		t.Fatalf("expected empty diff, got %q", got)
	}
}

func TestLines_ChangedLine(t *testing.T) {
	got := Lines("a\nb\nc\n", "a\nx\nc\n")
	want := " a\n-b\n+x\n c\n"
	if got != want {
		t.Fatalf("unexpected diff:\n%s", got)
	}
}

func TestLines_AddedTail(t *testing.T) {
	got := Lines("a\n", "a\nb\n")
	want := " a\n+b\n"
	if got != want {
		t.Fatalf("unexpected diff:\n%s", got)
	}
}
