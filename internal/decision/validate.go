package decision

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tunesort/internal/inventory"
	"tunesort/internal/textutil"
)

// Rejection reasons reported for files that stay in the inbox.
const (
	ReasonNotClassified = "not classified"
	ReasonUnknownFolder = "folder not in allow-list"
	ReasonUnsafeFolder  = "folder name is not a single safe path segment"
	ReasonEmptyName     = "new name is empty after sanitizing"
	ReasonNotSubmitted  = "file was not submitted this cycle"
)

// Policy carries the validation knobs.
type Policy struct {
	AllowFolderCreation bool
	// Reserved lists folder names that can never be created, such as the
	// inbox directory.
	Reserved []string
}

// Validated is a decision that passed validation, bound to the inventoried
// file it applies to.
type Validated struct {
	Decision
	File inventory.CandidateFile
	// NewFolder is true when the destination is not in the allow-list and
	// will be created.
	NewFolder bool
}

// Rejection records why a file is left in the inbox.
type Rejection struct {
	Original string
	Folder   string
	Reason   string
}

// Outcome is the validation result for one cycle.
type Outcome struct {
	// Accepted is ordered like the submitted files.
	Accepted []Validated
	// Rejected covers both rejected decisions and submitted files without a
	// decision, ordered by filename.
	Rejected []Rejection
}

// Validate filters decisions to those targeting an allowed folder and naming
// a file that was actually submitted. Each submitted file receives at most
// one validated decision.
func Validate(decisions map[string]Decision, folders inventory.FolderSet, files []inventory.CandidateFile, policy Policy) Outcome {
	submitted := make(map[string]inventory.CandidateFile, len(files))
	for _, f := range files {
		submitted[textutil.NormalizeName(f.Name)] = f
	}
	reserved := make([]string, 0, len(policy.Reserved))
	for _, name := range policy.Reserved {
		reserved = append(reserved, textutil.NormalizeName(name))
	}

	var out Outcome
	decided := make(map[string]struct{}, len(decisions))
	for key, d := range decisions {
		decided[key] = struct{}{}
		file, ok := submitted[key]
		if !ok {
			out.Rejected = append(out.Rejected, Rejection{Original: d.Original, Folder: d.Folder, Reason: ReasonNotSubmitted})
			continue
		}
		v, reason := validateOne(d, file, folders, reserved, policy)
		if reason != "" {
			out.Rejected = append(out.Rejected, Rejection{Original: d.Original, Folder: d.Folder, Reason: reason})
			continue
		}
		out.Accepted = append(out.Accepted, v)
	}
	for key, f := range submitted {
		if _, ok := decided[key]; !ok {
			out.Rejected = append(out.Rejected, Rejection{Original: f.Name, Reason: ReasonNotClassified})
		}
	}

	order := make(map[string]int, len(files))
	for i, f := range files {
		order[f.Name] = i
	}
	sort.SliceStable(out.Accepted, func(i, j int) bool {
		return order[out.Accepted[i].File.Name] < order[out.Accepted[j].File.Name]
	})
	sort.Slice(out.Rejected, func(i, j int) bool {
		return out.Rejected[i].Original < out.Rejected[j].Original
	})
	return out
}

// BaseName is the final base name, without extension, for a proposed new
// name: any echoed extension is stripped and unsafe characters are removed.
func BaseName(newName, originalExt string) string {
	return textutil.SanitizeFileName(textutil.StripEchoedExtension(newName, originalExt))
}

func validateOne(d Decision, file inventory.CandidateFile, folders inventory.FolderSet, reserved []string, policy Policy) (Validated, string) {
	v := Validated{Decision: d, File: file}
	if BaseName(d.NewName, file.Ext) == "" {
		return Validated{}, ReasonEmptyName
	}

	if actual, ok := folders.Lookup(d.Folder); ok {
		v.Folder = actual
		return v, ""
	}
	if !policy.AllowFolderCreation {
		return Validated{}, ReasonUnknownFolder
	}
	// Casers keep state, so one is built per new folder.
	folder := strings.TrimSpace(cases.Title(language.Und, cases.NoLower).String(d.Folder))
	if !textutil.IsSafeSegment(folder) {
		return Validated{}, ReasonUnsafeFolder
	}
	if isReserved(folder, reserved) {
		return Validated{}, ReasonUnsafeFolder
	}
	if actual, ok := folders.Lookup(folder); ok {
		v.Folder = actual
		return v, ""
	}
	v.Folder = folder
	v.NewFolder = true
	return v, ""
}

// isReserved matches case-insensitively: on a case-insensitive filesystem
// "Inbox" and "inbox" are the same directory.
func isReserved(folder string, reserved []string) bool {
	folder = textutil.NormalizeName(folder)
	for _, name := range reserved {
		if strings.EqualFold(folder, name) {
			return true
		}
	}
	return false
}
