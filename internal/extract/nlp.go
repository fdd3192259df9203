package extract

import (
	"regexp"
	"strings"
)

// discardWords are articles, auxiliary verbs, and similar tokens that
// never carry identity; capitalized or not, they break a span.
var discardWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"is": true, "am": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true,
	"can": true, "could": true, "will": true, "would": true,
	"shall": true, "should": true, "may": true, "might": true, "must": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "he": true, "she": true, "they": true,
	"we": true, "i": true, "you": true, "my": true, "our": true,
	"their": true, "his": true, "her": true,
	"and": true, "or": true, "but": true, "if": true, "so": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "from": true, "by": true, "as": true,
	"not": true, "no": true, "yes": true, "there": true, "here": true,
	"when": true, "then": true, "now": true, "today": true,
	"tomorrow": true, "yesterday": true, "also": true, "just": true,
	"note": true, "notes": true, "new": true, "next": true, "first": true,
	"after": true, "before": true, "while": true, "still": true,
}

// orgSuffixes classify a proper-noun span as an organization when its
// last token matches.
var orgSuffixes = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "co": true,
	"llc": true, "ltd": true, "labs": true, "lab": true,
	"foundation": true, "institute": true, "university": true,
	"group": true, "team": true, "systems": true, "technologies": true,
	"capital": true, "partners": true, "ventures": true, "bank": true,
}

// orgNames classify well-known single-token organizations.
var orgNames = map[string]bool{
	"anthropic": true, "openai": true, "google": true, "microsoft": true,
	"amazon": true, "apple": true, "meta": true, "nvidia": true,
	"netflix": true, "tesla": true, "intel": true, "ibm": true,
	"oracle": true, "stripe": true, "github": true, "reddit": true,
	"bloomberg": true, "reuters": true, "nasdaq": true, "nyse": true,
}

var properTokenRe = regexp.MustCompile(`^[A-Z][A-Za-z'’.-]*$`)

// extractProperNouns runs the NLP pass over a paragraph: strip Markdown,
// collect capitalized token spans, discard articles and auxiliaries,
// and classify each span as person or organization. Spans whose
// normalized form already matched a lexicon extractor are skipped so
// the lexicon's type wins.
func extractProperNouns(para string, lexiconLabels map[string]bool) []Occurrence {
	plain := StripMarkdown(para)
	if plain == "" {
		return nil
	}

	var out []Occurrence
	emit := func(span []string) {
		if len(span) == 0 {
			return
		}
		// Lone short acronyms belong to the ticker pass, not here.
		if len(span) == 1 && span[0] == strings.ToUpper(span[0]) && len(span[0]) <= 5 {
			return
		}
		label := strings.Join(span, " ")
		if len(label) < 3 || len(label) > 60 {
			return
		}
		if lexiconLabels[Normalize(label)] {
			return
		}
		out = append(out, Occurrence{Label: label, Type: classifySpan(span)})
	}

	var span []string
	sentenceStart := true
	for _, tok := range strings.Fields(plain) {
		word := strings.Trim(tok, ",;:()\"'“”‘’")
		endsSentence := strings.ContainsAny(tok, ".!?")

		clean := strings.TrimRight(word, ".!?")
		lower := strings.ToLower(clean)

		switch {
		case clean == "" || discardWords[lower] || !properTokenRe.MatchString(clean):
			emit(span)
			span = nil
		case sentenceStart && len(span) == 0 && commonSentenceLeads[lower]:
			// A capitalized common word at sentence start is case noise,
			// not a name.
		default:
			span = append(span, clean)
		}

		if endsSentence {
			emit(span)
			span = nil
		}
		sentenceStart = endsSentence
	}
	emit(span)
	return out
}

// commonSentenceLeads are words frequently capitalized only because
// they open a sentence.
var commonSentenceLeads = map[string]bool{
	"added": true, "bought": true, "built": true, "checked": true,
	"closed": true, "created": true, "decided": true, "deployed": true,
	"finished": true, "fixed": true, "getting": true, "got": true,
	"keep": true, "looking": true, "made": true, "maybe": true,
	"meeting": true, "moved": true, "need": true, "opened": true,
	"planning": true, "ran": true, "read": true, "rebuilt": true,
	"reference": true, "reviewed": true, "set": true, "shipped": true,
	"sold": true, "talked": true,
	"spent": true, "started": true, "testing": true, "think": true,
	"thinking": true, "tried": true, "updated": true, "used": true,
	"watching": true, "went": true, "wired": true, "working": true,
	"writing": true, "wrote": true,
}

func classifySpan(span []string) string {
	last := strings.ToLower(strings.TrimRight(span[len(span)-1], "."))
	if orgSuffixes[last] {
		return "organization"
	}
	for _, tok := range span {
		if orgNames[strings.ToLower(tok)] {
			return "organization"
		}
	}
	// Multi-token all-caps spans read as org acronym phrases.
	if len(span) >= 2 {
		allCaps := true
		for _, tok := range span {
			if tok != strings.ToUpper(tok) {
				allCaps = false
				break
			}
		}
		if allCaps {
			return "organization"
		}
	}
	return "person"
}
