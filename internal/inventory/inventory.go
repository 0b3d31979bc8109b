// Package inventory lists the candidate files waiting in the inbox and the
// destination folders that make up the allow-list for one cycle.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"tunesort/internal/services"
	"tunesort/internal/textutil"
)

// DefaultBatchSize bounds the number of files offered to the oracle per cycle.
const DefaultBatchSize = 50

// CandidateFile is a regular file directly inside the inbox at scan time.
type CandidateFile struct {
	// Name is the full base name including the extension.
	Name string
	// Ext is the extension including the leading dot, or "".
	Ext  string
	Path string
}

// Stem returns the base name without its extension.
func (f CandidateFile) Stem() string {
	return strings.TrimSuffix(f.Name, f.Ext)
}

// Options controls candidate selection.
type Options struct {
	// Pattern is an optional doublestar glob matched case-insensitively
	// against the base name, e.g. "*.{mp3,flac}".
	Pattern   string
	BatchSize int
}

// Listing is the result of one inbox scan.
type Listing struct {
	Files []CandidateFile
	// Deferred counts matching files held back by the batch cap. They are
	// picked up by a later cycle.
	Deferred int
}

// FolderSet is the allow-list of destination folder names. Keys are NFC
// normalized; values are the names as they exist on disk.
type FolderSet map[string]string

// Lookup returns the on-disk folder name matching name.
func (s FolderSet) Lookup(name string) (string, bool) {
	actual, ok := s[textutil.NormalizeName(name)]
	return actual, ok
}

// Contains reports whether name is in the set.
func (s FolderSet) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Sorted returns the on-disk folder names in lexical order.
func (s FolderSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for _, name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFolderSet builds a set from names.
func NewFolderSet(names ...string) FolderSet {
	set := make(FolderSet, len(names))
	for _, name := range names {
		set[textutil.NormalizeName(name)] = name
	}
	return set
}

// ListCandidateFiles returns regular files directly under inboxDir sorted by
// name. Hidden entries, directories, and symlinks are skipped.
func ListCandidateFiles(inboxDir string, opts Options) (Listing, error) {
	entries, err := readDir(inboxDir, "list candidates")
	if err != nil {
		return Listing{}, err
	}
	pattern := strings.ToLower(strings.TrimSpace(opts.Pattern))
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	var listing Listing
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.Type().IsRegular() {
			continue
		}
		if pattern != "" {
			matched, err := doublestar.Match(pattern, strings.ToLower(name))
			if err != nil {
				return Listing{}, services.Wrap(services.ErrConfiguration, "inventory", "match pattern", fmt.Sprintf("invalid file pattern %q", opts.Pattern), err)
			}
			if !matched {
				continue
			}
		}
		if len(listing.Files) >= batch {
			listing.Deferred++
			continue
		}
		listing.Files = append(listing.Files, CandidateFile{
			Name: textutil.NormalizeName(name),
			Ext:  filepath.Ext(name),
			Path: filepath.Join(inboxDir, name),
		})
	}
	return listing, nil
}

// ListValidFolders returns the names of immediate subdirectories of root.
// Paths in exclude (typically the inbox) are left out when they are direct
// children of root.
func ListValidFolders(root string, exclude ...string) (FolderSet, error) {
	entries, err := readDir(root, "list folders")
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(exclude))
	cleanRoot := filepath.Clean(root)
	for _, path := range exclude {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if filepath.Dir(clean) == cleanRoot {
			skip[filepath.Base(clean)] = struct{}{}
		}
	}

	folders := make(FolderSet)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.IsDir() {
			continue
		}
		if _, excluded := skip[name]; excluded {
			continue
		}
		folders[textutil.NormalizeName(name)] = name
	}
	return folders, nil
}

func readDir(dir, operation string) ([]os.DirEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "inventory", operation, dir, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrFilesystem, "inventory", operation, dir, errors.New("not a directory"))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "inventory", operation, dir, err)
	}
	return entries, nil
}
