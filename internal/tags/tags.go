// Package tags rewrites the ID3 tags of organized MP3 files from their
// location: the folder names the artist and album, the file name carries the
// title.
package tags

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"

	"tunesort/internal/fileutil"
	"tunesort/internal/inventory"
	"tunesort/internal/logging"
	"tunesort/internal/services"
	"tunesort/internal/textutil"
)

// titleSeparator splits "Artist - Title" base names.
const titleSeparator = " - "

// Result describes what NormalizeFile did to one file.
type Result struct {
	Path   string
	Target string
	Artist string
	Album  string
	Title  string
	// Retagged is true when the tag was rewritten.
	Retagged bool
	// Renamed is true when the file moved to Target.
	Renamed bool
	Skipped bool
	Err     error
}

// Changed reports whether the file was touched at all.
func (r Result) Changed() bool { return r.Retagged || r.Renamed }

// Fields derives the tag values for a file at path. Artist and Album are the
// parent folder name; Title is the base name after the first " - ", or the
// whole base name when there is none.
func Fields(path string) (artist, album, title string) {
	folder := filepath.Base(filepath.Dir(path))
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title = base
	if _, after, ok := strings.Cut(base, titleSeparator); ok && strings.TrimSpace(after) != "" {
		title = after
	}
	return folder, folder, strings.TrimSpace(title)
}

// IsSupported reports whether path is a file the normalizer handles.
func IsSupported(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// Normalizer applies tag normalization.
type Normalizer struct {
	logger *slog.Logger
}

// New constructs a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logging.NewComponentLogger(logger, "tags")}
}

// NormalizeFile replaces every ID3 frame of the file at path with artist,
// album, and title derived from its location, then renames it to
// "<Artist> - <Title>.mp3". A file that already carries exactly those frames
// under that name is left alone.
func (n *Normalizer) NormalizeFile(ctx context.Context, path string) Result {
	logger := logging.WithContext(ctx, n.logger)
	artist, album, title := Fields(path)
	result := Result{Path: path, Target: path, Artist: artist, Album: album, Title: title}
	if !IsSupported(path) {
		result.Skipped = true
		return result
	}

	retagged, err := writeTag(path, artist, album, title)
	if err != nil {
		result.Err = services.Wrap(services.ErrMove, "tags", "write tag", path, err)
		logging.WarnWithContext(logger, "tag rewrite failed; file left as is", "tag_write_failed",
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file is a readable MP3 and writable"),
			logging.String(logging.FieldImpact, "tags and name stay unchanged"),
		)
		return result
	}
	result.Retagged = retagged

	wantName := textutil.SanitizeFileName(artist+titleSeparator+title) + filepath.Ext(path)
	if wantName != filepath.Base(path) {
		target := filepath.Join(filepath.Dir(path), wantName)
		if err := fileutil.MoveFile(path, target); err != nil {
			result.Err = services.Wrap(services.ErrMove, "tags", "rename", fmt.Sprintf("%s -> %s", path, target), err)
			logging.WarnWithContext(logger, "rename after retag failed", "tag_rename_failed",
				logging.String("file", path),
				logging.String("target", target),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file keeps its old name"),
			)
			return result
		}
		result.Target = target
		result.Renamed = true
	}

	if result.Changed() {
		logger.Info("normalized tags",
			logging.String("file", result.Target),
			logging.String("artist", artist),
			logging.String("title", title),
			logging.Bool("renamed", result.Renamed),
			logging.String(logging.FieldEventType, "tags_normalized"),
		)
	}
	return result
}

// NormalizeTree normalizes the MP3 files directly inside every destination
// folder of root. Folders listed in exclude, such as the inbox, are skipped.
// Per-file failures are reported in the results; only an unreadable root
// returns an error.
func (n *Normalizer) NormalizeTree(ctx context.Context, root string, exclude ...string) ([]Result, error) {
	folders, err := inventory.ListValidFolders(root, exclude...)
	if err != nil {
		return nil, err
	}
	var results []Result
	for _, folder := range folders.Sorted() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		listing, err := inventory.ListCandidateFiles(filepath.Join(root, folder), inventory.Options{
			Pattern:   "*.mp3",
			BatchSize: math.MaxInt,
		})
		if err != nil {
			results = append(results, Result{Path: filepath.Join(root, folder), Err: err})
			continue
		}
		for _, file := range listing.Files {
			results = append(results, n.NormalizeFile(ctx, file.Path))
		}
	}
	return results, nil
}

func writeTag(path, artist, album, title string) (bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return false, fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	if tag.Version() == 4 && tag.Count() == 3 &&
		tag.Artist() == artist && tag.Album() == album && tag.Title() == title {
		return false, nil
	}

	tag.DeleteAllFrames()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetArtist(artist)
	tag.SetAlbum(album)
	tag.SetTitle(title)
	if err := tag.Save(); err != nil {
		return false, fmt.Errorf("save tag: %w", err)
	}
	return true, nil
}
