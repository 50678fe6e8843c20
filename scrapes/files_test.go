package scrapes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListCountsRecords(t *testing.T) {
	d := Dir{Path: t.TempDir()}
	writeCSV(t, d.Path, "plumbing_pros_abcd1234_20260101_120000.csv",
		"prospect_quality,name\nHOT,Joe\nWARM,Amy\n")
	writeCSV(t, d.Path, "power_washing_crew_ef567890_20260102_130000.csv",
		"prospect_quality,name\n")
	writeCSV(t, d.Path, "notes.txt", "not a csv")

	files, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2 (txt excluded)", len(files))
	}

	byName := map[string]FileInfo{}
	for _, f := range files {
		byName[f.Filename] = f
	}
	plumb := byName["plumbing_pros_abcd1234_20260101_120000.csv"]
	if plumb.Records != 2 {
		t.Errorf("records = %d, want 2", plumb.Records)
	}
	if plumb.Industry != "plumbing" {
		t.Errorf("industry = %q, want plumbing", plumb.Industry)
	}
	power := byName["power_washing_crew_ef567890_20260102_130000.csv"]
	if power.Records != 0 {
		t.Errorf("header-only file records = %d, want 0", power.Records)
	}
	if power.Industry != "power_washing" {
		t.Errorf("industry = %q, want power_washing", power.Industry)
	}
}

func TestListMissingDir(t *testing.T) {
	d := Dir{Path: filepath.Join(t.TempDir(), "missing")}
	files, err := d.List()
	if err != nil || files != nil {
		t.Fatalf("List on missing dir = %v, %v", files, err)
	}
}

func TestOpenAndDelete(t *testing.T) {
	d := Dir{Path: t.TempDir()}
	writeCSV(t, d.Path, "hvac_x_a1b2c3d4_20260101_120000.csv", "h\n1\n")

	f, err := d.Open("hvac_x_a1b2c3d4_20260101_120000.csv")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.Close()

	if err := d.Delete("hvac_x_a1b2c3d4_20260101_120000.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := d.Delete("hvac_x_a1b2c3d4_20260101_120000.csv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	d := Dir{Path: t.TempDir()}
	for _, name := range []string{"../secret.csv", "a/b.csv", ".hidden.csv", ""} {
		if _, err := d.Open(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) = %v, want ErrNotFound", name, err)
		}
		if err := d.Delete(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete(%q) = %v, want ErrNotFound", name, err)
		}
	}
}
