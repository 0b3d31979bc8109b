package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"tunesort/internal/decision"
	"tunesort/internal/reconcile"
)

func printReport(w io.Writer, report reconcile.Report) {
	p := newPalette(w)

	if len(report.Candidates) == 0 {
		fmt.Fprintln(w, "Inbox is empty.")
		return
	}
	if report.OracleErr != nil {
		fmt.Fprintln(w, renderStatusLine(p, "Oracle", statusError, report.OracleErr.Error()))
	}

	headers := []string{"File", "Destination", "Result"}
	var rows [][]string
	if report.DryRun {
		for _, v := range report.Planned {
			result := p.paint(statusInfo, "would move")
			if v.NewFolder {
				result = p.paint(statusWarn, "would create folder")
			}
			rows = append(rows, []string{v.File.Name, plannedTarget(v), result})
		}
	} else {
		for _, m := range report.Moves {
			dest := relativeTarget(m.Target, m.Folder)
			switch {
			case m.Err != nil:
				rows = append(rows, []string{filepath.Base(m.Source), dest, p.paint(statusError, "failed: "+m.Err.Error())})
			case m.Created:
				rows = append(rows, []string{filepath.Base(m.Source), dest, p.paint(statusOK, "moved (new folder)")})
			default:
				rows = append(rows, []string{filepath.Base(m.Source), dest, p.paint(statusOK, "moved")})
			}
		}
	}
	for _, r := range report.Rejections {
		rows = append(rows, []string{r.Original, r.Folder, p.paint(statusWarn, "left: "+r.Reason)})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(headers, rows, nil))
	}

	summary := []string{fmt.Sprintf("%d candidates", len(report.Candidates))}
	if report.DryRun {
		summary = append(summary, fmt.Sprintf("%d planned", len(report.Planned)))
	} else {
		summary = append(summary, fmt.Sprintf("%d moved", report.Moved()))
		if failed := report.Failed(); failed > 0 {
			summary = append(summary, fmt.Sprintf("%d failed", failed))
		}
	}
	summary = append(summary, fmt.Sprintf("%d left in inbox", len(report.Rejections)))
	if report.Deferred > 0 {
		summary = append(summary, fmt.Sprintf("%d deferred", report.Deferred))
	}
	fmt.Fprintln(w, strings.Join(summary, ", "))
}

func plannedTarget(v decision.Validated) string {
	return filepath.Join(v.Folder, decision.BaseName(v.NewName, v.File.Ext)+v.File.Ext)
}

func relativeTarget(target, folder string) string {
	if target == "" {
		return folder
	}
	return filepath.Join(folder, filepath.Base(target))
}
