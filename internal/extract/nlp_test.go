package extract

import (
	"strings"
	"testing"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		gone    []string
		present []string
	}{
		{
			"code fence removed",
			"before\n```\nsecret code\n```\nafter",
			[]string{"secret code", "```"},
			[]string{"before", "after"},
		},
		{
			"code span removed",
			"ran `kubectl get pods` on prod",
			[]string{"kubectl"},
			[]string{"ran", "prod"},
		},
		{
			"link target removed label kept",
			"see [the writeup](https://example.com/x) for details",
			[]string{"https://example.com/x"},
			[]string{"the writeup", "details"},
		},
		{
			"list and heading markers removed",
			"## Plan\n- first item\n1. second item",
			[]string{"##", "- ", "1."},
			[]string{"Plan", "first item", "second item"},
		},
		{
			"emphasis and table glyphs removed",
			"| col | **bold** |",
			[]string{"|", "**"},
			[]string{"col", "bold"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripMarkdown(tt.input)
			for _, s := range tt.gone {
				if strings.Contains(got, s) {
					t.Errorf("StripMarkdown kept %q in %q", s, got)
				}
			}
			for _, s := range tt.present {
				if !strings.Contains(got, s) {
					t.Errorf("StripMarkdown lost %q from %q", s, got)
				}
			}
		})
	}
}

func TestExtractProperNouns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		present bool
	}{
		{"single name", "Talked with Anton about the rollout.", "person:anton", true},
		{"full name span", "Maria Keller signed off on the migration.", "person:maria_keller", true},
		{"org by suffix", "The quote came from Vanguard Group this morning.", "organization:vanguard_group", true},
		{"org by lexicon", "Anthropic shipped a new model today.", "organization:anthropic", true},
		{"article breaks span", "Talked to The Anton.", "person:the_anton", false},
		{"lowercase ignored", "nothing capitalized in this sentence at all", "person:nothing", false},
		{"short acronym skipped", "The CEO approved the plan for QZX work.", "person:qzx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractProperNouns(tt.input, map[string]bool{})
			found := false
			for _, o := range got {
				if o.ID() == tt.wantID {
					found = true
				}
			}
			if found != tt.present {
				t.Errorf("%s present = %v, want %v (got %v)", tt.wantID, found, tt.present, got)
			}
		})
	}
}

func TestLexiconWinsOverProperNoun(t *testing.T) {
	// "Docker" would read as a proper noun, but the tool lexicon
	// already claimed it.
	got := extractProperNouns("Rebuilt the Docker image overnight.", map[string]bool{"docker": true})
	for _, o := range got {
		if Normalize(o.Label) == "docker" {
			t.Errorf("proper-noun pass re-emitted a lexicon hit: %v", o)
		}
	}
}

func TestClassifySpan(t *testing.T) {
	tests := []struct {
		span []string
		want string
	}{
		{[]string{"Anton"}, "person"},
		{[]string{"Maria", "Keller"}, "person"},
		{[]string{"Vanguard", "Group"}, "organization"},
		{[]string{"Acme", "Corp"}, "organization"},
		{[]string{"Nvidia"}, "organization"},
		{[]string{"DEEP", "THOUGHT"}, "organization"},
	}
	for _, tt := range tests {
		if got := classifySpan(tt.span); got != tt.want {
			t.Errorf("classifySpan(%v) = %q, want %q", tt.span, got, tt.want)
		}
	}
}
