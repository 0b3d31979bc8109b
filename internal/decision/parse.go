package decision

import (
	"regexp"
	"strings"

	"tunesort/internal/textutil"
)

// Separator is the arrow token delimiting decision fields.
const Separator = "→"

// ParseMode selects how many fields a decision line may carry.
type ParseMode int

const (
	// ParseStrict requires exactly three fields.
	ParseStrict ParseMode = iota
	// ParseLenient accepts three or more fields and uses the first three.
	ParseLenient
)

// ParseModeFromString maps the configuration value to a ParseMode. Anything
// other than "lenient" is strict.
func ParseModeFromString(value string) ParseMode {
	if strings.EqualFold(strings.TrimSpace(value), "lenient") {
		return ParseLenient
	}
	return ParseStrict
}

func (m ParseMode) String() string {
	if m == ParseLenient {
		return "lenient"
	}
	return "strict"
}

// Decision is one parsed, unvalidated classification.
type Decision struct {
	Original string
	Folder   string
	NewName  string
}

// bulletPattern matches list markers. Numbered markers are left alone since
// track names such as "01. Intro.mp3" start the same way.
var bulletPattern = regexp.MustCompile(`^[-*•]\s+`)

// Parse reads decision lines from response. The result is keyed by the
// NFC-normalized original filename; a later line for the same file replaces
// an earlier one.
func Parse(response string, mode ParseMode) map[string]Decision {
	decisions := make(map[string]Decision)
	for _, raw := range strings.Split(response, "\n") {
		d, ok := ParseLine(raw, mode)
		if !ok {
			continue
		}
		decisions[d.Original] = d
	}
	return decisions
}

// ParseLine parses a single decision line.
func ParseLine(line string, mode ParseMode) (Decision, bool) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, "```") {
		return Decision{}, false
	}
	if !strings.Contains(line, Separator) {
		return Decision{}, false
	}
	line = bulletPattern.ReplaceAllString(line, "")

	fields := strings.Split(line, Separator)
	switch {
	case len(fields) < 3:
		return Decision{}, false
	case len(fields) > 3 && mode != ParseLenient:
		return Decision{}, false
	}

	d := Decision{
		Original: textutil.NormalizeName(cleanField(fields[0])),
		Folder:   textutil.NormalizeName(cleanField(fields[1])),
		NewName:  textutil.NormalizeName(cleanField(fields[2])),
	}
	if d.Original == "" || d.Folder == "" || d.NewName == "" {
		return Decision{}, false
	}
	return d, true
}

func cleanField(field string) string {
	return textutil.TrimQuotes(strings.TrimSpace(field))
}
