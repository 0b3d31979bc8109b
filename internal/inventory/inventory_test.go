package inventory_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tunesort/internal/inventory"
	"tunesort/internal/services"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListCandidateFilesSkipsDirsHiddenAndSymlinks(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.mp3"))
	touch(t, filepath.Join(root, "a.flac"))
	touch(t, filepath.Join(root, ".partial.mp3"))
	touch(t, filepath.Join(root, "Rock", "inside.mp3"))
	if err := os.Symlink(filepath.Join(root, "a.flac"), filepath.Join(root, "link.mp3")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	listing, err := inventory.ListCandidateFiles(root, inventory.Options{})
	if err != nil {
		t.Fatalf("ListCandidateFiles: %v", err)
	}
	if len(listing.Files) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", listing.Files)
	}
	if listing.Files[0].Name != "a.flac" || listing.Files[1].Name != "b.mp3" {
		t.Fatalf("expected sorted names, got %+v", listing.Files)
	}
	first := listing.Files[0]
	if first.Ext != ".flac" || first.Stem() != "a" || first.Path != filepath.Join(root, "a.flac") {
		t.Fatalf("unexpected candidate %+v", first)
	}
}

func TestListCandidateFilesPatternIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "one.MP3"))
	touch(t, filepath.Join(root, "two.flac"))
	touch(t, filepath.Join(root, "cover.jpg"))

	listing, err := inventory.ListCandidateFiles(root, inventory.Options{Pattern: "*.{mp3,flac}"})
	if err != nil {
		t.Fatalf("ListCandidateFiles: %v", err)
	}
	if len(listing.Files) != 2 {
		t.Fatalf("expected 2 matches, got %+v", listing.Files)
	}
}

func TestListCandidateFilesDefersBeyondBatch(t *testing.T) {
	root := t.TempDir()
	for i := range 5 {
		touch(t, filepath.Join(root, fmt.Sprintf("song-%d.mp3", i)))
	}

	listing, err := inventory.ListCandidateFiles(root, inventory.Options{BatchSize: 3})
	if err != nil {
		t.Fatalf("ListCandidateFiles: %v", err)
	}
	if len(listing.Files) != 3 || listing.Deferred != 2 {
		t.Fatalf("expected 3 files and 2 deferred, got %d/%d", len(listing.Files), listing.Deferred)
	}
	if listing.Files[2].Name != "song-2.mp3" {
		t.Fatalf("expected lexical batch, got %+v", listing.Files)
	}
}

func TestListCandidateFilesMissingRoot(t *testing.T) {
	_, err := inventory.ListCandidateFiles(filepath.Join(t.TempDir(), "missing"), inventory.Options{})
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}

func TestListValidFoldersExcludesInbox(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"Rock", "Jazz", "Inbox", ".Trash"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	touch(t, filepath.Join(root, "loose.mp3"))

	folders, err := inventory.ListValidFolders(root, filepath.Join(root, "Inbox"))
	if err != nil {
		t.Fatalf("ListValidFolders: %v", err)
	}
	got := folders.Sorted()
	if len(got) != 2 || got[0] != "Jazz" || got[1] != "Rock" {
		t.Fatalf("unexpected folders %v", got)
	}
	if folders.Contains("Inbox") {
		t.Fatal("inbox must not be a destination")
	}
}

func TestListValidFoldersRootIsInbox(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Rock"), 0o755); err != nil {
		t.Fatal(err)
	}
	folders, err := inventory.ListValidFolders(root, root)
	if err != nil {
		t.Fatalf("ListValidFolders: %v", err)
	}
	if !folders.Contains("Rock") {
		t.Fatalf("expected Rock folder, got %v", folders.Sorted())
	}
}

func TestListValidFoldersNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	touch(t, file)
	if _, err := inventory.ListValidFolders(file); !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}
