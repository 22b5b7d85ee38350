package bundle

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

const testArchiveURL = "https://releases.example/ffmpeg-test.zip"

// writeZip builds a zip fixture containing the given entries (dir entries
// end with a slash).
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, contents := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(contents)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

// fixtureInstaller returns an installer whose fetch step copies the prepared
// archive into place instead of touching the network.
func fixtureInstaller(t *testing.T, fixture string, fetchOK bool) *Installer {
	t.Helper()
	return &Installer{
		Fetch: func(_ context.Context, _ string, dest string, _ int) bool {
			if !fetchOK {
				return false
			}
			data, err := os.ReadFile(fixture)
			if err != nil {
				t.Fatalf("read fixture: %v", err)
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				t.Fatalf("copy fixture: %v", err)
			}
			return true
		},
	}
}

func assertCleanedUp(t *testing.T, workDir string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(workDir, "extract")); !os.IsNotExist(err) {
		t.Fatalf("expected scratch dir removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "ffmpeg-test.zip")); !os.IsNotExist(err) {
		t.Fatalf("expected archive removed, stat err=%v", err)
	}
}

func TestInstallCopiesRequiredFiles(t *testing.T) {
	tmp := t.TempDir()
	fixture := filepath.Join(tmp, "fixture.zip")
	writeZip(t, fixture, map[string]string{
		"ffmpeg-master/doc/readme.txt": "docs",
		"ffmpeg-master/bin/ffmpeg":     "binary-a",
		"ffmpeg-master/bin/ffprobe":    "binary-b",
		"ffmpeg-master/bin/ffplay":     "binary-c",
	})

	workDir := filepath.Join(tmp, "work")
	targetDir := filepath.Join(tmp, "bin")

	inst := fixtureInstaller(t, fixture, true)
	ok := inst.Install(context.Background(), Options{
		ArchiveURL:    testArchiveURL,
		RequiredFiles: []string{"ffmpeg", "ffprobe", "ffplay"},
		MarkerDir:     "bin",
		TargetDir:     targetDir,
		WorkDir:       workDir,
	})
	if !ok {
		t.Fatal("expected install to succeed")
	}

	for _, name := range []string{"ffmpeg", "ffprobe", "ffplay"} {
		data, err := os.ReadFile(filepath.Join(targetDir, name))
		if err != nil {
			t.Fatalf("expected %s copied: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("expected %s non-empty", name)
		}
	}
	assertCleanedUp(t, workDir)
}

func TestInstallToleratesPartialBundle(t *testing.T) {
	tmp := t.TempDir()
	fixture := filepath.Join(tmp, "fixture.zip")
	writeZip(t, fixture, map[string]string{
		"release/bin/ffmpeg": "binary-a",
	})

	workDir := filepath.Join(tmp, "work")
	targetDir := filepath.Join(tmp, "bin")

	inst := fixtureInstaller(t, fixture, true)
	ok := inst.Install(context.Background(), Options{
		ArchiveURL:    testArchiveURL,
		RequiredFiles: []string{"ffmpeg", "ffprobe", "ffplay"},
		MarkerDir:     "bin",
		TargetDir:     targetDir,
		WorkDir:       workDir,
	})
	if !ok {
		t.Fatal("expected partial bundle to still count as success")
	}

	if _, err := os.Stat(filepath.Join(targetDir, "ffmpeg")); err != nil {
		t.Fatalf("expected ffmpeg copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(targetDir, "ffprobe")); !os.IsNotExist(err) {
		t.Fatalf("did not expect ffprobe, stat err=%v", err)
	}
	assertCleanedUp(t, workDir)
}

func TestInstallFailsWhenNothingCopied(t *testing.T) {
	tmp := t.TempDir()
	fixture := filepath.Join(tmp, "fixture.zip")
	writeZip(t, fixture, map[string]string{
		"release/bin/changelog.txt": "nothing useful",
	})

	workDir := filepath.Join(tmp, "work")
	inst := fixtureInstaller(t, fixture, true)
	ok := inst.Install(context.Background(), Options{
		ArchiveURL:    testArchiveURL,
		RequiredFiles: []string{"ffmpeg", "ffprobe"},
		MarkerDir:     "bin",
		TargetDir:     filepath.Join(tmp, "bin"),
		WorkDir:       workDir,
	})
	if ok {
		t.Fatal("expected install to fail when no required file was copied")
	}
	assertCleanedUp(t, workDir)
}

func TestInstallFailsWithoutMarkerDir(t *testing.T) {
	tmp := t.TempDir()
	fixture := filepath.Join(tmp, "fixture.zip")
	writeZip(t, fixture, map[string]string{
		"release/tools/ffmpeg": "binary-a",
	})

	workDir := filepath.Join(tmp, "work")
	inst := fixtureInstaller(t, fixture, true)
	ok := inst.Install(context.Background(), Options{
		ArchiveURL:    testArchiveURL,
		RequiredFiles: []string{"ffmpeg"},
		MarkerDir:     "bin",
		TargetDir:     filepath.Join(tmp, "bin"),
		WorkDir:       workDir,
	})
	if ok {
		t.Fatal("expected install to fail without the marker directory")
	}
	assertCleanedUp(t, workDir)
}

func TestInstallRejectsEscapingArchiveEntries(t *testing.T) {
	tmp := t.TempDir()
	fixture := filepath.Join(tmp, "fixture.zip")
	writeZip(t, fixture, map[string]string{
		"../../evil": "outside the scratch dir",
	})

	workDir := filepath.Join(tmp, "work")
	inst := fixtureInstaller(t, fixture, true)
	ok := inst.Install(context.Background(), Options{
		ArchiveURL:    testArchiveURL,
		RequiredFiles: []string{"ffmpeg"},
		MarkerDir:     "bin",
		TargetDir:     filepath.Join(tmp, "bin"),
		WorkDir:       workDir,
	})
	if ok {
		t.Fatal("expected install to fail on an entry that escapes the scratch dir")
	}
	if _, err := os.Stat(filepath.Join(tmp, "evil")); !os.IsNotExist(err) {
		t.Fatalf("expected no file written outside the scratch dir, stat err=%v", err)
	}
	assertCleanedUp(t, workDir)
}

func TestInstallFailsWhenDownloadFails(t *testing.T) {
	tmp := t.TempDir()
	workDir := filepath.Join(tmp, "work")

	inst := fixtureInstaller(t, "", false)
	ok := inst.Install(context.Background(), Options{
		ArchiveURL:    testArchiveURL,
		RequiredFiles: []string{"ffmpeg"},
		MarkerDir:     "bin",
		TargetDir:     filepath.Join(tmp, "bin"),
		WorkDir:       workDir,
	})
	if ok {
		t.Fatal("expected install to fail when the download fails")
	}
	assertCleanedUp(t, workDir)
}

func TestFindMarkerDirPrefersLexicallyFirstMatch(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		filepath.Join(root, "b-release", "bin"),
		filepath.Join(root, "a-release", "bin"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	match, err := findMarkerDir(root, "bin")
	if err != nil {
		t.Fatalf("findMarkerDir: %v", err)
	}
	want := filepath.Join(root, "a-release", "bin")
	if match != want {
		t.Fatalf("expected %s, got %s", want, match)
	}
}

func TestFindMarkerDirMissing(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "release", "lib"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	match, err := findMarkerDir(root, "bin")
	if err != nil {
		t.Fatalf("findMarkerDir: %v", err)
	}
	if match != "" {
		t.Fatalf("expected no match, got %s", match)
	}
}
