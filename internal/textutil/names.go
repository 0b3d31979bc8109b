package textutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// quotePairs lists the wrappers oracles commonly put around names.
var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"`", "`"},
	{"“", "”"},
	{"‘", "’"},
	{"«", "»"},
}

// NormalizeName folds name into Unicode NFC so decomposed and precomposed
// spellings of the same filename compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// SameName reports whether a and b name the same file after trimming and NFC
// normalization. Comparison is case-sensitive.
func SameName(a, b string) bool {
	return NormalizeName(strings.TrimSpace(a)) == NormalizeName(strings.TrimSpace(b))
}

// TrimQuotes removes matching quote characters wrapping value, repeatedly.
func TrimQuotes(value string) string {
	value = strings.TrimSpace(value)
	for {
		trimmed := false
		for _, pair := range quotePairs {
			if len(value) >= len(pair[0])+len(pair[1]) &&
				strings.HasPrefix(value, pair[0]) && strings.HasSuffix(value, pair[1]) {
				value = strings.TrimSpace(value[len(pair[0]) : len(value)-len(pair[1])])
				trimmed = true
			}
		}
		if !trimmed {
			return value
		}
	}
}

// audioExtensions are the suffixes stripped from a proposed name in addition
// to the file's own extension.
var audioExtensions = map[string]struct{}{
	".mp3": {}, ".flac": {}, ".m4a": {}, ".aac": {}, ".ogg": {},
	".opus": {}, ".wav": {}, ".wma": {}, ".aiff": {}, ".alac": {},
}

// StripEchoedExtension removes an extension the oracle appended to a proposed
// base name. Only the original extension or a known audio extension is
// stripped (case-insensitive), so titles such as "Still D.R.E" or "Pt.II"
// keep their dots.
func StripEchoedExtension(name, originalExt string) string {
	name = strings.TrimSpace(name)
	if originalExt != "" && len(name) > len(originalExt) && strings.EqualFold(name[len(name)-len(originalExt):], originalExt) {
		return strings.TrimSpace(name[:len(name)-len(originalExt)])
	}
	ext := filepath.Ext(name)
	if ext == "" || len(ext) == len(name) {
		return name
	}
	if _, ok := audioExtensions[strings.ToLower(ext)]; !ok {
		return name
	}
	return strings.TrimSpace(name[:len(name)-len(ext)])
}
