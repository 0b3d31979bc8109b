package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tunesort/internal/logging"
	"tunesort/internal/reconcile"
	"tunesort/internal/services"
	"tunesort/internal/testsupport"
)

func TestRunMovesClassifiedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "Old Song.mp3"), 64)
	fake := testsupport.NewFakeOracle("Old Song.mp3 → Rock → Queen - Bohemian Rhapsody\n")

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Moved() != 1 {
		t.Fatalf("expected 1 move, got %+v", report.Moves)
	}
	if _, err := os.Stat(filepath.Join(root, "Rock", "Queen - Bohemian Rhapsody.mp3")); err != nil {
		t.Fatalf("expected moved file: %v", err)
	}
	if names := testsupport.ListNames(t, root); len(names) != 0 {
		t.Fatalf("expected empty inbox, got %v", names)
	}
	if !strings.Contains(fake.LastRequest(), "Old Song.mp3") || !strings.Contains(fake.LastRequest(), "Rock") {
		t.Fatalf("request missing file or folder:\n%s", fake.LastRequest())
	}
	if report.CycleID == "" || report.Duration < 0 {
		t.Fatalf("expected cycle id and duration, got %+v", report)
	}
	wantStates := []reconcile.State{
		reconcile.StateIdle, reconcile.StateScanning, reconcile.StateAwaitingOracle,
		reconcile.StateParsing, reconcile.StateValidating, reconcile.StateApplying, reconcile.StateIdle,
	}
	if fmt.Sprint(report.States) != fmt.Sprint(wantStates) {
		t.Fatalf("unexpected states %v", report.States)
	}
}

func TestRunRejectsUnknownFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "Unknown.mp3"), 8)
	fake := testsupport.NewFakeOracle("Unknown.mp3 → Reggae → Whoever - Track")

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Moves) != 0 || len(report.Rejections) != 1 {
		t.Fatalf("expected one rejection and no moves, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "Unknown.mp3")); err != nil {
		t.Fatalf("expected file left in inbox: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Reggae")); !os.IsNotExist(err) {
		t.Fatalf("Reggae folder must not be created, stat err=%v", err)
	}
}

func TestRunOracleFailureMovesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "a.mp3"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "b.mp3"), 8)
	netErr := services.Wrap(services.ErrOracleUnavailable, "oracle", "classify", "", errors.New("dial tcp: connection refused"))
	fake := testsupport.NewFailingOracle(netErr)
	cycle := reconcile.New(cfg, fake, logging.NewNop())

	report, err := cycle.Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("oracle failure must not abort the cycle: %v", err)
	}
	if !errors.Is(report.OracleErr, services.ErrOracleUnavailable) {
		t.Fatalf("expected oracle error in report, got %v", report.OracleErr)
	}
	if len(report.Moves) != 0 {
		t.Fatalf("expected no moves, got %+v", report.Moves)
	}
	if names := testsupport.ListNames(t, root); len(names) != 2 {
		t.Fatalf("expected both files in inbox, got %v", names)
	}

	if _, err := cycle.Run(context.Background(), reconcile.Options{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if fake.Calls() != 2 {
		t.Fatalf("expected the next run to rescan and call again, got %d calls", fake.Calls())
	}
}

func TestRunIgnoresTextReturnedWithOracleError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "a.mp3"), 8)
	fake := testsupport.NewScriptedOracle(func(string) (string, error) {
		return "a.mp3 → Rock → A - Song", errors.New("stream interrupted")
	})

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OracleErr == nil || len(report.Planned) != 0 || len(report.Moves) != 0 {
		t.Fatalf("expected no decisions after oracle error, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "a.mp3")); err != nil {
		t.Fatalf("expected file left in inbox: %v", err)
	}
}

func TestRunIsIdempotentWhenInboxEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "a.mp3"), 8)
	fake := testsupport.NewFakeOracle("a.mp3 → Rock → A - Song")
	cycle := reconcile.New(cfg, fake, logging.NewNop())

	if _, err := cycle.Run(context.Background(), reconcile.Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := cycle.Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if fake.Calls() != 1 {
		t.Fatalf("expected no oracle call on empty inbox, got %d calls", fake.Calls())
	}
	if second.OracleCalled() || len(second.Moves) != 0 {
		t.Fatalf("expected no-op second run, got %+v", second)
	}
	if second.States[2] != reconcile.StateNoFilesFound {
		t.Fatalf("expected no_files_found state, got %v", second.States)
	}
}

func TestRunMissingRootAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.RootFolder); err != nil {
		t.Fatal(err)
	}
	fake := testsupport.NewFakeOracle("")

	_, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	if fake.Calls() != 0 {
		t.Fatal("oracle must not be called when scanning fails")
	}
}

func TestRunDuplicateDecisionsSingleDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock", "Pop"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "a.mp3"), 8)
	fake := testsupport.NewFakeOracle("a.mp3 → Rock → A - First\na.mp3 → Pop → A - Second\n")

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Moves) != 1 || !report.Moves[0].OK() {
		t.Fatalf("expected exactly one move, got %+v", report.Moves)
	}
	if _, err := os.Stat(filepath.Join(root, "Pop", "A - Second.mp3")); err != nil {
		t.Fatalf("expected last decision to win: %v", err)
	}
	if names := testsupport.ListNames(t, filepath.Join(root, "Rock")); len(names) != 0 {
		t.Fatalf("expected nothing in Rock, got %v", names)
	}
}

func TestRunMoveFailureDoesNotBlockOthers(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "a.mp3"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "b.mp3"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "c.mp3"), 8)
	// A regular file where the Blocked folder should be makes the move of a.mp3 fail.
	testsupport.WriteFile(t, filepath.Join(root, "Blocked"), 1)
	fake := testsupport.NewFakeOracle("a.mp3 → Blocked → A - A\nb.mp3 → Rock → B - B\nc.mp3 → Rock → C - C\n")
	cfg.Sorter.AllowFolderCreation = true

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Moved() != 2 || report.Failed() != 1 {
		t.Fatalf("expected 2 moves and 1 failure, got moved=%d failed=%d", report.Moved(), report.Failed())
	}
	if _, err := os.Stat(filepath.Join(root, "a.mp3")); err != nil {
		t.Fatalf("expected failed file left in inbox: %v", err)
	}
}

func TestRunBatchCapDefersFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"), testsupport.WithBatchSize(2))
	root := cfg.Paths.RootFolder
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		testsupport.WriteFile(t, filepath.Join(root, name), 8)
	}
	fake := testsupport.NewScriptedOracle(func(request string) (string, error) {
		var lines []string
		for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
			if strings.Contains(request, name) {
				lines = append(lines, name+" → Rock → X - "+strings.TrimSuffix(name, ".mp3"))
			}
		}
		return strings.Join(lines, "\n"), nil
	})
	cycle := reconcile.New(cfg, fake, logging.NewNop())

	first, err := cycle.Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Candidates) != 2 || first.Deferred != 1 || first.Moved() != 2 {
		t.Fatalf("unexpected first report: candidates=%d deferred=%d moved=%d", len(first.Candidates), first.Deferred, first.Moved())
	}
	second, err := cycle.Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Moved() != 1 || second.Deferred != 0 {
		t.Fatalf("expected deferred file handled next cycle, got %+v", second)
	}
	if names := testsupport.ListNames(t, filepath.Join(root, "Rock")); len(names) != 3 {
		t.Fatalf("expected 3 files in Rock, got %v", names)
	}
}

func TestRunDryRunMovesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "a.mp3"), 8)
	fake := testsupport.NewFakeOracle("a.mp3 → Rock → A - Song")

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Planned) != 1 || len(report.Moves) != 0 {
		t.Fatalf("expected one planned decision and no moves, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "a.mp3")); err != nil {
		t.Fatalf("dry run must not move files: %v", err)
	}
}

func TestRunInboxSubdirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInbox("Inbox"), testsupport.WithFolders("Rock"))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "Inbox", "a.mp3"), 8)
	testsupport.WriteFile(t, filepath.Join(root, "loose.mp3"), 8)
	fake := testsupport.NewFakeOracle("a.mp3 → Inbox → A - Song\n")

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.Join(report.Folders, ","), "Inbox") {
		t.Fatalf("inbox must not be offered as a folder: %v", report.Folders)
	}
	if len(report.Candidates) != 1 || report.Candidates[0].Name != "a.mp3" {
		t.Fatalf("expected only inbox files as candidates, got %+v", report.Candidates)
	}
	if len(report.Moves) != 0 {
		t.Fatalf("expected inbox destination rejected, got %+v", report.Moves)
	}
}

func TestRunNormalizesTagsAfterMove(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Queen"), testsupport.WithNormalizeTags(true))
	root := cfg.Paths.RootFolder
	testsupport.WriteFile(t, filepath.Join(root, "track.mp3"), 32)
	fake := testsupport.NewFakeOracle("track.mp3 → Queen → Queen - Bohemian Rhapsody")

	report, err := reconcile.New(cfg, fake, logging.NewNop()).Run(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Tags) != 1 || report.Tags[0].Err != nil || !report.Tags[0].Retagged {
		t.Fatalf("expected tag normalization after move, got %+v", report.Tags)
	}
}

func TestRequestDoesNotCallOracle(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolders("Jazz"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.RootFolder, "x.mp3"), 8)
	fake := testsupport.NewFakeOracle("")

	request, listing, err := reconcile.New(cfg, fake, logging.NewNop()).Request()
	if err != nil {
		t.Fatal(err)
	}
	if len(listing.Files) != 1 || !strings.Contains(request, "x.mp3") || !strings.Contains(request, "Jazz") {
		t.Fatalf("unexpected request %q", request)
	}
	if fake.Calls() != 0 {
		t.Fatal("Request must not call the oracle")
	}
}
