package extract

import (
	"errors"
	"strings"
	"testing"
)

func occurrenceSet(paras []Paragraph) map[string]bool {
	out := make(map[string]bool)
	for _, p := range paras {
		for _, o := range p.Occurrences {
			out[o.ID()] = true
		}
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Anton", "anton"},
		{"increase NVDA allocation", "increase_nvda_allocation"},
		{"yahoo-finance", "yahoo-finance"},
		{"  spaced   out  ", "spaced_out"},
		{"Mixed_Case-Label", "mixed_case-label"},
		{"punct!u@tion#", "punctution"},
		{"café au lait", "caf_au_lait"},
		{"", ""},
		{"***", ""},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractEmptyContent(t *testing.T) {
	ex := New(Options{})
	_, err := ex.Extract(nil, "memory/empty.md")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("want ErrEmptyContent, got %v", err)
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"blank line separates", "first paragraph here\n\nsecond paragraph here", 2},
		{"heading separates without blank", "first paragraph here\n## Heading Two here\nbody continues", 2},
		{"short paragraphs dropped", "tiny\n\nthis one is long enough", 1},
		{"multiple blanks collapse", "alpha paragraph\n\n\n\nbeta paragraph", 2},
		{"single paragraph", "just one paragraph of text", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.input)
			if len(got) != tt.want {
				t.Errorf("got %d paragraphs %q, want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestHeadingStartsNewParagraph(t *testing.T) {
	// The heading and its following body stay together; the split is
	// before the heading line.
	paras := SplitParagraphs("intro text goes here\n# Section Title\nbody of the section")
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if !strings.HasPrefix(paras[1], "# Section Title") {
		t.Errorf("second paragraph = %q, want heading-led", paras[1])
	}
}

func TestExtractHeaders(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"h1", "# Trading Notes", true},
		{"h3", "### Deploy Checklist", true},
		{"h4 ignored", "#### Too Deep Heading", false},
		{"too short", "# ab", false},
		{"too long", "# " + strings.Repeat("x", 41), false},
		{"list marker", "# - not a header topic", false},
	}
	ex := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paras, err := ex.Extract([]byte(tt.line+"\nfiller body text to pass length"), "memory/t.md")
			if err != nil {
				t.Fatal(err)
			}
			found := false
			for id := range occurrenceSet(paras) {
				if strings.HasPrefix(id, "header:") {
					found = true
				}
			}
			if found != tt.want {
				t.Errorf("header extraction = %v, want %v", found, tt.want)
			}
		})
	}
}

func TestExtractBoldConcepts(t *testing.T) {
	ex := New(Options{})
	paras, err := ex.Extract([]byte("The **risk budget** matters more than the **PnL** today."), "memory/t.md")
	if err != nil {
		t.Fatal(err)
	}
	ids := occurrenceSet(paras)
	if !ids["concept:risk_budget"] {
		t.Error("missing concept:risk_budget")
	}
	if !ids["concept:pnl"] {
		t.Error("missing concept:pnl")
	}
}

func TestExtractTickers(t *testing.T) {
	ex := New(Options{})
	tests := []struct {
		name    string
		content string
		wantID  string
		present bool
	}{
		{"whitelisted bare", "Thinking about NVDA exposure this week.", "ticker:nvda", true},
		{"stoplisted never", "Updated the TODO list for the API work.", "ticker:todo", false},
		{"unknown without dollar", "The QZX situation remains unclear to me.", "ticker:qzx", false},
		{"unknown with dollar", "Bought $QZX early. The QZX thesis is intact.", "ticker:qzx", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paras, err := ex.Extract([]byte(tt.content), "memory/t.md")
			if err != nil {
				t.Fatal(err)
			}
			if got := occurrenceSet(paras)[tt.wantID]; got != tt.present {
				t.Errorf("%s present = %v, want %v", tt.wantID, got, tt.present)
			}
		})
	}
}

func TestDollarPassIsDocumentWide(t *testing.T) {
	// The $-prefixed form in one paragraph qualifies the bare run in
	// another paragraph of the same document.
	content := "Watching the HOOD flow closely today.\n\nOpened a starter in $HOOD at the close."
	ex := New(Options{TickerWhitelist: []string{"ZZZZ"}}) // HOOD off the whitelist
	paras, err := ex.Extract([]byte(content), "memory/t.md")
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, p := range paras {
		for _, o := range p.Occurrences {
			if o.ID() == "ticker:hood" {
				count++
			}
		}
	}
	if count != 2 {
		t.Errorf("ticker:hood paragraphs = %d, want 2", count)
	}
}

func TestExtractTools(t *testing.T) {
	ex := New(Options{})
	paras, err := ex.Extract([]byte("Moved the deploy from Docker to kubernetes on the new host."), "memory/t.md")
	if err != nil {
		t.Fatal(err)
	}
	ids := occurrenceSet(paras)
	if !ids["tool:docker"] {
		t.Error("missing tool:docker (case-insensitive lexicon match)")
	}
	if !ids["tool:kubernetes"] {
		t.Error("missing tool:kubernetes")
	}
}

func TestExtractBacktickTokens(t *testing.T) {
	ex := New(Options{})
	paras, err := ex.Extract([]byte("Wired `yahoo-finance` into the scanner; skipped `two words` spans."), "memory/t.md")
	if err != nil {
		t.Fatal(err)
	}
	ids := occurrenceSet(paras)
	if !ids["tool:yahoo-finance"] {
		t.Error("missing tool:yahoo-finance")
	}
	for id := range ids {
		if strings.Contains(id, "two_words") {
			t.Errorf("multi-word backtick span extracted: %s", id)
		}
	}
}

func TestExtractURLs(t *testing.T) {
	ex := New(Options{})
	paras, err := ex.Extract([]byte("Reference: https://example.com/post?id=1, worth rereading."), "memory/t.md")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, p := range paras {
		for _, o := range p.Occurrences {
			if o.Type == "url" {
				found = true
				if strings.HasSuffix(o.Label, ",") {
					t.Errorf("trailing punctuation kept: %q", o.Label)
				}
			}
		}
	}
	if !found {
		t.Error("no url occurrence extracted")
	}
}

func TestExtractDecisions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantID  string
		present bool
	}{
		{
			"decided-to with trailing clause",
			"Anton decided to increase NVDA allocation using `yahoo-finance`.",
			"decision:increase_nvda_allocation",
			true,
		},
		{
			"completed task item",
			"- [x] migrate the backup job to systemd timers",
			"decision:migrate_the_backup_job_to_systemd_timers",
			true,
		},
		{
			"open task item ignored",
			"- [ ] migrate the backup job to systemd timers",
			"decision:migrate_the_backup_job_to_systemd_timers",
			false,
		},
		{
			"settled-on marker",
			"After a week of testing we settled on postgres for the journal.",
			"decision:postgres_for_the_journal",
			true,
		},
		{
			"too short",
			"I chose to go.",
			"decision:go",
			false,
		},
	}
	ex := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paras, err := ex.Extract([]byte(tt.content), "memory/t.md")
			if err != nil {
				t.Fatal(err)
			}
			if got := occurrenceSet(paras)[tt.wantID]; got != tt.present {
				t.Errorf("%s present = %v, want %v (ids: %v)", tt.wantID, got, tt.present, occurrenceSet(paras))
			}
		})
	}
}

func TestParagraphDedup(t *testing.T) {
	ex := New(Options{})
	paras, err := ex.Extract([]byte("Docker then docker then DOCKER again in one paragraph."), "memory/t.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paras))
	}
	count := 0
	for _, o := range paras[0].Occurrences {
		if o.ID() == "tool:docker" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("tool:docker occurrences = %d, want 1 after dedup", count)
	}
}

func TestSingleFileIngestParagraph(t *testing.T) {
	// The canonical single-paragraph case: person, ticker, tool, and
	// decision all surface with the expected ids.
	ex := New(Options{})
	paras, err := ex.Extract(
		[]byte("Anton decided to increase NVDA allocation using `yahoo-finance`."),
		"memory/2026-01-15.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paras))
	}
	ids := occurrenceSet(paras)
	for _, want := range []string{
		"person:anton",
		"ticker:nvda",
		"tool:yahoo-finance",
		"decision:increase_nvda_allocation",
	} {
		if !ids[want] {
			t.Errorf("missing %s (got %v)", want, ids)
		}
	}
	if len(paras[0].Occurrences) != 4 {
		t.Errorf("occurrence count = %d, want 4", len(paras[0].Occurrences))
	}
}
