// Package prompt renders the classification request sent to the oracle.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"tunesort/internal/inventory"
)

// Separator is the field delimiter the oracle must use in each decision line.
const Separator = "→"

// SystemPrompt is the role instruction sent alongside every request.
const SystemPrompt = "You sort audio files into music library folders. " +
	"Answer only with decision lines in the requested arrow format."

//go:embed request.tmpl
var requestTemplate string

var tmpl = template.Must(template.New("request").Parse(requestTemplate))

// Options adjusts the instructions given to the oracle.
type Options struct {
	AllowFolderCreation bool
}

type templateData struct {
	Folders             []string
	Files               []string
	Separator           string
	AllowFolderCreation bool
}

// Build renders the request for folders and files. Folders are listed in
// sorted order and files in the order given, so identical inputs always
// produce identical text.
func Build(folders inventory.FolderSet, files []inventory.CandidateFile, opts Options) (string, error) {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	data := templateData{
		Folders:             folders.Sorted(),
		Files:               names,
		Separator:           Separator,
		AllowFolderCreation: opts.AllowFolderCreation,
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render request: %w", err)
	}
	return b.String(), nil
}
