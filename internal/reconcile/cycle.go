package reconcile

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tunesort/internal/config"
	"tunesort/internal/decision"
	"tunesort/internal/inventory"
	"tunesort/internal/logging"
	"tunesort/internal/oracle"
	"tunesort/internal/organizer"
	"tunesort/internal/prompt"
	"tunesort/internal/services"
	"tunesort/internal/tags"
)

// Options adjusts a single run.
type Options struct {
	// DryRun stops after validation: nothing is moved or retagged.
	DryRun bool
}

// Cycle wires the reconciliation components for one music root.
type Cycle struct {
	cfg        *config.Config
	oracle     oracle.Oracle
	organizer  *organizer.Organizer
	normalizer *tags.Normalizer
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs a Cycle. cfg is treated as read-only.
func New(cfg *config.Config, o oracle.Oracle, logger *slog.Logger) *Cycle {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cycle{
		cfg:        cfg,
		oracle:     o,
		organizer:  organizer.New(cfg.Paths.RootFolder, logger),
		normalizer: tags.New(logger),
		logger:     logging.NewComponentLogger(logger, "reconcile"),
		now:        time.Now,
	}
}

type run struct {
	ctx    context.Context
	base   *slog.Logger
	logger *slog.Logger
	report *Report
}

func (r *run) enter(state State) {
	r.report.States = append(r.report.States, state)
	r.ctx = services.WithPhase(r.ctx, string(state))
	r.logger = logging.WithContext(r.ctx, r.base)
}

// Run executes one cycle. The returned error is non-nil only when scanning
// the root or inbox fails; the report is filled in either way.
func (c *Cycle) Run(ctx context.Context, opts Options) (report Report, err error) {
	report = Report{
		CycleID: uuid.NewString(),
		DryRun:  opts.DryRun,
		Started: c.now(),
		States:  []State{StateIdle},
	}
	ctx = services.WithCycleID(ctx, report.CycleID)
	r := &run{ctx: ctx, base: c.logger, logger: logging.WithContext(ctx, c.logger), report: &report}
	defer func() {
		report.Duration = c.now().Sub(report.Started)
		report.States = append(report.States, StateIdle)
	}()

	r.enter(StateScanning)
	folders, listing, err := c.scan()
	if err != nil {
		logging.ErrorWithContext(r.logger, "scan failed; cycle aborted", "scan_failed",
			logging.Error(err),
			logging.String("root", c.cfg.Paths.RootFolder),
			logging.String("inbox", c.cfg.InboxPath()),
			logging.String(logging.FieldErrorHint, "check that root_folder exists and is readable"),
		)
		return report, err
	}
	report.Folders = folders.Sorted()
	report.Candidates = listing.Files
	report.Deferred = listing.Deferred
	r.logger.Debug("scanned library",
		logging.Strings("folders", report.Folders),
		logging.Int("candidates", len(listing.Files)),
		logging.Int("deferred", listing.Deferred),
	)

	if len(listing.Files) == 0 {
		r.enter(StateNoFilesFound)
		r.logger.Debug("inbox empty; skipping oracle", logging.String(logging.FieldEventType, "inbox_empty"))
		return report, nil
	}

	request, err := prompt.Build(folders, listing.Files, prompt.Options{AllowFolderCreation: c.cfg.Sorter.AllowFolderCreation})
	if err != nil {
		return report, services.Wrap(services.ErrValidation, "reconcile", "build request", "", err)
	}
	report.Request = request

	r.enter(StateAwaitingOracle)
	r.logger.Info("classifying inbox",
		logging.Int("files", len(listing.Files)),
		logging.Int("deferred", listing.Deferred),
		logging.Int("folders", len(folders)),
	)
	response, err := c.oracle.Classify(r.ctx, request)
	if err != nil {
		// A failed call yields no decisions, even if some text came back.
		response = ""
		report.OracleErr = err
		logging.WarnWithContext(r.logger, "oracle call failed; no decisions this cycle", "oracle_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check api_key, model, and network access"),
			logging.String(logging.FieldImpact, "all files stay in the inbox until the next cycle"),
		)
	}
	report.Response = response

	r.enter(StateParsing)
	mode := decision.ParseModeFromString(c.cfg.Sorter.ParseMode)
	decisions := decision.Parse(response, mode)
	r.logger.Debug("parsed response",
		logging.Int("decisions", len(decisions)),
		logging.String("mode", mode.String()),
	)

	r.enter(StateValidating)
	outcome := decision.Validate(decisions, folders, listing.Files, decision.Policy{
		AllowFolderCreation: c.cfg.Sorter.AllowFolderCreation,
		Reserved:            c.reservedNames(),
	})
	report.Planned = outcome.Accepted
	report.Rejections = outcome.Rejected
	for _, rej := range outcome.Rejected {
		r.logger.Info("left in inbox",
			logging.String("file", rej.Original),
			logging.String("folder", rej.Folder),
			logging.String("reason", rej.Reason),
			logging.String(logging.FieldEventType, "file_left"),
		)
	}

	if opts.DryRun {
		return report, nil
	}

	r.enter(StateApplying)
	for _, v := range outcome.Accepted {
		if r.ctx.Err() != nil {
			break
		}
		result := c.organizer.Apply(r.ctx, v)
		report.Moves = append(report.Moves, result)
		if result.OK() && c.cfg.Sorter.NormalizeTags && tags.IsSupported(result.Target) {
			report.Tags = append(report.Tags, c.normalizer.NormalizeFile(r.ctx, result.Target))
		}
	}

	summaryAttrs := []logging.Attr{
		logging.Int("moved", report.Moved()),
		logging.Int("failed", report.Failed()),
		logging.Int("left", len(report.Rejections)),
		logging.Duration("elapsed", c.now().Sub(report.Started)),
		logging.String(logging.FieldEventType, "cycle_complete"),
	}
	if report.Deferred > 0 {
		summaryAttrs = append(summaryAttrs, logging.Int("deferred", report.Deferred))
	}
	if len(report.Tags) > 0 {
		summaryAttrs = append(summaryAttrs, logging.Int("retagged", len(report.Tags)))
	}
	if report.Failed() > 0 {
		summaryAttrs = append(summaryAttrs, logging.Alert("move_failures"))
	}
	r.logger.Info("cycle complete", logging.Args(summaryAttrs...)...)
	return report, nil
}

// Request scans the inbox and renders the classification request without
// calling the oracle.
func (c *Cycle) Request() (string, inventory.Listing, error) {
	folders, listing, err := c.scan()
	if err != nil {
		return "", listing, err
	}
	if len(listing.Files) == 0 {
		return "", listing, nil
	}
	request, err := prompt.Build(folders, listing.Files, prompt.Options{AllowFolderCreation: c.cfg.Sorter.AllowFolderCreation})
	return request, listing, err
}

func (c *Cycle) scan() (inventory.FolderSet, inventory.Listing, error) {
	folders, err := inventory.ListValidFolders(c.cfg.Paths.RootFolder, c.cfg.InboxPath())
	if err != nil {
		return nil, inventory.Listing{}, err
	}
	listing, err := inventory.ListCandidateFiles(c.cfg.InboxPath(), inventory.Options{
		Pattern:   c.cfg.Sorter.FilePattern,
		BatchSize: c.cfg.Sorter.BatchSize,
	})
	if err != nil {
		return nil, inventory.Listing{}, err
	}
	return folders, listing, nil
}

func (c *Cycle) reservedNames() []string {
	if c.cfg.InboxIsRoot() {
		return nil
	}
	return []string{filepath.Base(c.cfg.InboxPath())}
}
