package listings

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flarebyte/bookreplay/internal/config"
	"github.com/spf13/afero"
)

const manifest = `chapter: 10
listings:
  - classes: [sourcecode]
    ref: ch10l001
    filename: lists/tests.py
    text: |
      from django.test import TestCase
      class HomePageTest(TestCase):
  - text: Now run the tests.
  - classes: [userinput]
    text: "$ python manage.py test"
    output: "OK\n"
  - classes: [userinput]
    text: "$ git status"
`

func TestPrintListings(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/ch10.yaml", []byte(manifest), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := config.Chapter{
		Chapter:  10,
		Listings: "/ch10.yaml",
		Tests:    config.Tests{Command: "python manage.py test", HasCommand: true},
		Sanity:   config.Sanity{Kinds: []string{"code listing with git ref", "narrative"}, HasKinds: true},
	}
	var out bytes.Buffer
	if err := printListings(&out, fs, cfg, true); err != nil {
		t.Fatalf("print: %v", err)
	}
	want := []string{
		`{"position":0,"kind":"code listing with git ref","ref":"ch10l001","filename":"lists/tests.py","lines":2}`,
		`{"position":1,"kind":"narrative","lines":1}`,
		`{"position":2,"kind":"test","hasExpected":true}`,
		`{"position":3,"kind":"shell command","command":"git status"}`,
	}
	got := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("unexpected line count:\n%s", out.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d\nwant: %s\n got: %s", i, want[i], got[i])
		}
	}
}

func TestPrintListings_SanityMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/ch10.yaml", []byte(manifest), 0o644)
	cfg := config.Chapter{
		Chapter:  10,
		Listings: "/ch10.yaml",
		Sanity:   config.Sanity{Kinds: []string{"test"}, HasKinds: true},
	}
	err := printListings(&bytes.Buffer{}, fs, cfg, true)
	if err == nil || !strings.Contains(err.Error(), "sanity: listing 0") {
		t.Fatalf("expected sanity failure, got %v", err)
	}
}

func TestPrintListings_Unrecognized(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/ch10.yaml", []byte("chapter: 10\nlistings:\n  - classes: [sourcecode]\n    ref: nope\n"), 0o644)
	err := printListings(&bytes.Buffer{}, fs, config.Chapter{Chapter: 10, Listings: "/ch10.yaml"}, false)
	if err == nil || !strings.Contains(err.Error(), "unrecognized listing kind") {
		t.Fatalf("expected classification failure, got %v", err)
	}
}
