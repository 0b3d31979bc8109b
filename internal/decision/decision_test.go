package decision_test

import (
	"testing"

	"tunesort/internal/decision"
	"tunesort/internal/inventory"
)

func TestParseLineGrammar(t *testing.T) {
	tests := []struct {
		name string
		line string
		mode decision.ParseMode
		want decision.Decision
		ok   bool
	}{
		{
			name: "plain",
			line: "Old Song.mp3 → Rock → Queen - Bohemian Rhapsody",
			want: decision.Decision{Original: "Old Song.mp3", Folder: "Rock", NewName: "Queen - Bohemian Rhapsody"},
			ok:   true,
		},
		{
			name: "quotes and padding",
			line: `  "Old Song.mp3"  →  'Rock' → “Queen - Bohemian Rhapsody”  `,
			want: decision.Decision{Original: "Old Song.mp3", Folder: "Rock", NewName: "Queen - Bohemian Rhapsody"},
			ok:   true,
		},
		{
			name: "bullet prefix",
			line: "- track01.mp3 → Jazz → Miles Davis - So What",
			want: decision.Decision{Original: "track01.mp3", Folder: "Jazz", NewName: "Miles Davis - So What"},
			ok:   true,
		},
		{
			name: "numbered track name kept",
			line: "01. Intro.mp3 → Jazz → Miles Davis - Intro",
			want: decision.Decision{Original: "01. Intro.mp3", Folder: "Jazz", NewName: "Miles Davis - Intro"},
			ok:   true,
		},
		{name: "missing separator", line: "Old Song.mp3 -> Rock -> Queen"},
		{name: "two fields", line: "Old Song.mp3 → Rock"},
		{name: "empty field", line: "Old Song.mp3 →  → Queen - Song"},
		{name: "blank", line: "   "},
		{name: "code fence", line: "```"},
		{name: "prose", line: "Here are the results you asked for:"},
		{name: "four fields strict", line: "a.mp3 → Rock → A - B → extra"},
		{
			name: "four fields lenient",
			line: "a.mp3 → Rock → A - B → extra",
			mode: decision.ParseLenient,
			want: decision.Decision{Original: "a.mp3", Folder: "Rock", NewName: "A - B"},
			ok:   true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := decision.ParseLine(tc.line, tc.mode)
			if ok != tc.ok {
				t.Fatalf("ParseLine(%q) ok=%v, want %v", tc.line, ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("ParseLine(%q) = %+v, want %+v", tc.line, got, tc.want)
			}
		})
	}
}

func TestParseLastLineWins(t *testing.T) {
	response := "a.mp3 → Rock → First - Guess\r\n" +
		"garbage line\n" +
		"b.mp3 → Jazz → B - Song\n" +
		"a.mp3 → Pop → Second - Guess\n"

	got := decision.Parse(response, decision.ParseStrict)
	if len(got) != 2 {
		t.Fatalf("expected 2 decisions, got %+v", got)
	}
	if got["a.mp3"].Folder != "Pop" || got["a.mp3"].NewName != "Second - Guess" {
		t.Fatalf("expected last decision to win, got %+v", got["a.mp3"])
	}
}

func TestParseEmptyResponse(t *testing.T) {
	if got := decision.Parse("", decision.ParseStrict); len(got) != 0 {
		t.Fatalf("expected no decisions, got %+v", got)
	}
}

func TestParseModeFromString(t *testing.T) {
	if decision.ParseModeFromString(" Lenient ") != decision.ParseLenient {
		t.Fatal("expected lenient")
	}
	if decision.ParseModeFromString("") != decision.ParseStrict || decision.ParseModeFromString("bogus") != decision.ParseStrict {
		t.Fatal("expected strict default")
	}
}

func files(names ...string) []inventory.CandidateFile {
	out := make([]inventory.CandidateFile, 0, len(names))
	for _, name := range names {
		ext := ""
		if i := len(name) - 4; i > 0 && name[i] == '.' {
			ext = name[i:]
		}
		out = append(out, inventory.CandidateFile{Name: name, Ext: ext, Path: "/inbox/" + name})
	}
	return out
}

func TestValidateAllowList(t *testing.T) {
	decisions := map[string]decision.Decision{
		"Old Song.mp3": {Original: "Old Song.mp3", Folder: "Rock", NewName: "Queen - Bohemian Rhapsody"},
		"Unknown.mp3":  {Original: "Unknown.mp3", Folder: "Reggae", NewName: "Whoever - Track"},
		"ghost.mp3":    {Original: "ghost.mp3", Folder: "Rock", NewName: "Ghost - Song"},
	}
	out := decision.Validate(decisions, inventory.NewFolderSet("Rock"), files("Old Song.mp3", "Unknown.mp3", "Quiet.mp3"), decision.Policy{})

	if len(out.Accepted) != 1 {
		t.Fatalf("expected 1 accepted decision, got %+v", out.Accepted)
	}
	acc := out.Accepted[0]
	if acc.Folder != "Rock" || acc.File.Path != "/inbox/Old Song.mp3" || acc.NewFolder {
		t.Fatalf("unexpected accepted decision %+v", acc)
	}

	reasons := map[string]string{}
	for _, r := range out.Rejected {
		reasons[r.Original] = r.Reason
	}
	want := map[string]string{
		"Unknown.mp3": decision.ReasonUnknownFolder,
		"ghost.mp3":   decision.ReasonNotSubmitted,
		"Quiet.mp3":   decision.ReasonNotClassified,
	}
	for name, reason := range want {
		if reasons[name] != reason {
			t.Fatalf("expected %s rejected with %q, got %q", name, reason, reasons[name])
		}
	}
}

func TestValidateFoldersAlwaysInAllowList(t *testing.T) {
	allow := inventory.NewFolderSet("Rock", "Jazz")
	decisions := decision.Parse(
		"a.mp3 → Rock → A - A\nb.mp3 → Jazz → B - B\nc.mp3 → Polka → C - C\nd.mp3 → ../etc → D - D\n",
		decision.ParseStrict,
	)
	out := decision.Validate(decisions, allow, files("a.mp3", "b.mp3", "c.mp3", "d.mp3"), decision.Policy{})
	for _, v := range out.Accepted {
		if !allow.Contains(v.Folder) {
			t.Fatalf("folder %q escaped the allow-list", v.Folder)
		}
	}
	if len(out.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %d", len(out.Accepted))
	}
}

func TestValidateFolderCreation(t *testing.T) {
	decisions := map[string]decision.Decision{
		"a.mp3": {Original: "a.mp3", Folder: "queen", NewName: "Queen - Song"},
		"b.mp3": {Original: "b.mp3", Folder: "../escape", NewName: "B - Song"},
		"c.mp3": {Original: "c.mp3", Folder: "Inbox", NewName: "C - Song"},
	}
	policy := decision.Policy{AllowFolderCreation: true, Reserved: []string{"Inbox"}}
	out := decision.Validate(decisions, inventory.NewFolderSet("Rock"), files("a.mp3", "b.mp3", "c.mp3"), policy)

	if len(out.Accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %+v", out.Accepted)
	}
	if got := out.Accepted[0]; got.Folder != "Queen" || !got.NewFolder {
		t.Fatalf("expected new title-cased folder, got %+v", got)
	}
	for _, r := range out.Rejected {
		if r.Reason != decision.ReasonUnsafeFolder {
			t.Fatalf("expected unsafe folder rejection, got %+v", r)
		}
	}
}

func TestValidateReservedFolderIgnoresCase(t *testing.T) {
	decisions := map[string]decision.Decision{
		"a.mp3": {Original: "a.mp3", Folder: "inbox", NewName: "A - Song"},
		"b.mp3": {Original: "b.mp3", Folder: "INBOX", NewName: "B - Song"},
	}
	policy := decision.Policy{AllowFolderCreation: true, Reserved: []string{"inbox"}}
	out := decision.Validate(decisions, inventory.NewFolderSet("Rock"), files("a.mp3", "b.mp3"), policy)

	if len(out.Accepted) != 0 {
		t.Fatalf("inbox must never become a destination, got %+v", out.Accepted)
	}
	if len(out.Rejected) != 2 {
		t.Fatalf("expected both decisions rejected, got %+v", out.Rejected)
	}
}

func TestValidateSanitizesNewName(t *testing.T) {
	decisions := map[string]decision.Decision{
		"a.mp3": {Original: "a.mp3", Folder: "Rock", NewName: "AC/DC - Thunderstruck.mp3"},
		"b.mp3": {Original: "b.mp3", Folder: "Rock", NewName: "..."},
	}
	out := decision.Validate(decisions, inventory.NewFolderSet("Rock"), files("a.mp3", "b.mp3"), decision.Policy{})
	if len(out.Accepted) != 1 {
		t.Fatalf("expected one accepted decision, got %+v", out.Accepted)
	}
	if got := decision.BaseName(out.Accepted[0].NewName, ".mp3"); got != "AC-DC - Thunderstruck" {
		t.Fatalf("expected sanitized base name without extension, got %q", got)
	}
	if len(out.Rejected) != 1 || out.Rejected[0].Reason != decision.ReasonEmptyName {
		t.Fatalf("expected empty-name rejection, got %+v", out.Rejected)
	}
}

func TestValidateMatchesDecomposedNames(t *testing.T) {
	decomposed := "Beyonce\u0301.mp3"
	decisions := decision.Parse(decomposed+" → Pop → Beyonce\u0301 - Halo", decision.ParseStrict)
	out := decision.Validate(decisions, inventory.NewFolderSet("Pop"), files("Beyonc\u00e9.mp3"), decision.Policy{})
	if len(out.Accepted) != 1 {
		t.Fatalf("expected NFC match, got accepted=%+v rejected=%+v", out.Accepted, out.Rejected)
	}
}
