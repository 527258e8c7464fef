package listing

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const sampleManifest = `chapter: 10
listings:
  - classes: [sourcecode]
    ref: ch10l001
    filename: lists/tests.py
    text: |
      def test_home():
          pass
  - classes: [userinput]
    text: "$ python manage.py test"
    output: |
      OK
    expectFailure: false
`

func TestLoadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/book/ch10.yaml", []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := LoadManifest(fs, "/book/ch10.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Chapter != 10 || len(m.Listings) != 2 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.Listings[0].Ref != "ch10l001" || !strings.Contains(m.Listings[0].Text, "def test_home") {
		t.Fatalf("unexpected first listing: %+v", m.Listings[0])
	}
	if m.Listings[1].Output != "OK\n" {
		t.Fatalf("unexpected output: %q", m.Listings[1].Output)
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := LoadManifest(fs, "/missing.yaml"); err == nil || !strings.Contains(err.Error(), "failed to read listings") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseManifest([]byte("listings: []\n")); err == nil || err.Error() != "invalid listings: missing chapter" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseManifest([]byte("chapter: [\n")); err == nil || !strings.HasPrefix(err.Error(), "invalid listings:") {
		t.Fatalf("unexpected error: %v", err)
	}
}
