// Package organizer applies validated decisions: it moves each inbox file into
// its destination folder under the new name.
//
// Moves overwrite an existing file of the same name. Repeating a cycle with
// the same decision therefore converges on one file instead of accumulating
// numbered copies. A failed move leaves the source where it was.
package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tunesort/internal/decision"
	"tunesort/internal/fileutil"
	"tunesort/internal/logging"
	"tunesort/internal/services"
)

// MoveResult is the outcome of applying one validated decision.
type MoveResult struct {
	Source string
	Folder string
	Target string
	// Created is true when the destination folder did not exist before.
	Created bool
	// Noop is true when the source already sat at the target path.
	Noop bool
	Err  error
}

// OK reports whether the file reached its target.
func (r MoveResult) OK() bool { return r.Err == nil }

// Organizer moves files below a music root.
type Organizer struct {
	root   string
	logger *slog.Logger
	move   func(src, dst string) error
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithMoveFunc replaces the file move primitive (used in tests).
func WithMoveFunc(move func(src, dst string) error) Option {
	return func(o *Organizer) {
		if move != nil {
			o.move = move
		}
	}
}

// New constructs an Organizer rooted at root.
func New(root string, logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{
		root:   root,
		logger: logging.NewComponentLogger(logger, "organizer"),
		move:   fileutil.MoveFile,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TargetPath returns <root>/<folder>/<base><original extension> for v.
func (o *Organizer) TargetPath(v decision.Validated) string {
	return filepath.Join(o.root, v.Folder, decision.BaseName(v.NewName, v.File.Ext)+v.File.Ext)
}

// Apply moves the decision's file into place. Failures are reported in the
// result and never panic or stop the caller's batch.
func (o *Organizer) Apply(ctx context.Context, v decision.Validated) MoveResult {
	logger := logging.WithContext(ctx, o.logger)
	result := MoveResult{Source: v.File.Path, Folder: v.Folder, Target: o.TargetPath(v)}

	if err := ctx.Err(); err != nil {
		result.Err = services.Wrap(services.ErrMove, "organizer", "apply", "cycle cancelled", err)
		return result
	}
	if decision.BaseName(v.NewName, v.File.Ext) == "" {
		result.Err = services.Wrap(services.ErrMove, "organizer", "apply", "empty target name", nil)
		return result
	}

	destDir := filepath.Dir(result.Target)
	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		result.Created = true
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		result.Created = false
		result.Err = services.Wrap(services.ErrMove, "organizer", "ensure folder", destDir, err)
		logFailure(logger, result)
		return result
	}

	if fileutil.SameFile(result.Source, result.Target) {
		result.Noop = true
		logger.Debug("file already in place", logging.String("target", result.Target))
		return result
	}

	started := time.Now()
	if err := o.move(result.Source, result.Target); err != nil {
		result.Err = services.Wrap(services.ErrMove, "organizer", "move", fmt.Sprintf("%s -> %s", result.Source, result.Target), err)
		logFailure(logger, result)
		return result
	}
	logger.Info("moved file",
		logging.String("source", filepath.Base(result.Source)),
		logging.String("target", result.Target),
		logging.Bool("folder_created", result.Created),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "file_moved"),
	)
	return result
}

func logFailure(logger *slog.Logger, result MoveResult) {
	logging.WarnWithContext(logger, "move failed; file left in inbox", "move_failed",
		logging.String("source", result.Source),
		logging.String("target", result.Target),
		logging.Error(result.Err),
		logging.String(logging.FieldErrorHint, "check permissions and free space on the music root"),
		logging.String(logging.FieldImpact, "file stays in the inbox and is retried next cycle"),
	)
}
