// Package extract turns Markdown memory documents into typed entity
// occurrences, grouped by paragraph for co-occurrence analysis.
package extract

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyContent is returned when a document has no content at all.
var ErrEmptyContent = errors.New("empty content")

// minParagraphPayload is the minimum trimmed length for a paragraph to
// be considered at all.
const minParagraphPayload = 11

// Occurrence is a single typed entity mention inside one paragraph.
type Occurrence struct {
	Label string
	Type  string
}

// ID returns the stable node identifier for this occurrence.
func (o Occurrence) ID() string {
	return o.Type + ":" + Normalize(o.Label)
}

// Paragraph is one paragraph group: the deduplicated set of occurrences
// found in a single paragraph of a document.
type Paragraph struct {
	Index       int
	Occurrences []Occurrence
}

// Extractor holds the compiled lexicons and patterns. Safe for
// concurrent use once constructed.
type Extractor struct {
	tickerWhitelist map[string]bool
	tickerStoplist  map[string]bool
	tools           *toolScanner
	projects        []projectPattern
}

// Options overrides the built-in lexicons. Empty fields keep defaults.
type Options struct {
	TickerWhitelist []string
	TickerStoplist  []string
}

// New builds an Extractor with the default lexicons, applying any
// overrides from opts.
func New(opts Options) *Extractor {
	whitelist := defaultTickerWhitelist
	if len(opts.TickerWhitelist) > 0 {
		whitelist = toUpperSet(opts.TickerWhitelist)
	}
	stoplist := defaultTickerStoplist
	if len(opts.TickerStoplist) > 0 {
		stoplist = toUpperSet(opts.TickerStoplist)
	}
	return &Extractor{
		tickerWhitelist: whitelist,
		tickerStoplist:  stoplist,
		tools:           newToolScanner(defaultToolLexicon),
		projects:        compileProjectPatterns(defaultProjectPatterns),
	}
}

var (
	headerRe   = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)
	boldRe     = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	tickerRe   = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
	dollarRe   = regexp.MustCompile(`\$([A-Z]{2,5})\b`)
	backtickRe = regexp.MustCompile("`([^`\\s]{1,50})`")
	urlRe      = regexp.MustCompile(`https?://[^\s\)\]>]+`)
	taskDoneRe = regexp.MustCompile(`(?m)^\s*[-*]\s*\[[xX]\]\s*(.+)$`)

	// Decision phrases run to the first stop word, punctuation, or
	// formatting glyph after the marker.
	decisionRe = regexp.MustCompile(
		`(?i)\b(?:decided(?:\s+to)?|chose(?:\s+to)?|will|going\s+to|committed\s+to|settled\s+on)\s+` +
			`([A-Za-z0-9][A-Za-z0-9 ]*)`)
	decisionStopRe = regexp.MustCompile(`(?i)\s+(?:using|with|via|by|through|because|since|instead)\s.*$`)

	listMarkerRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s`)
)

// Extract maps a document to its ordered paragraph groups. The only
// error condition is empty input; unrecognized text simply produces no
// occurrences.
func (e *Extractor) Extract(content []byte, path string) ([]Paragraph, error) {
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}
	text := string(content)

	// Tickers that appear dollar-prefixed anywhere in the document
	// qualify bare runs in every paragraph. Document-level on purpose:
	// this mirrors how authors introduce a symbol once ($NVDA) and then
	// keep using the bare form.
	dollarTickers := make(map[string]bool)
	for _, m := range dollarRe.FindAllStringSubmatch(text, -1) {
		dollarTickers[m[1]] = true
	}

	var groups []Paragraph
	for i, para := range SplitParagraphs(text) {
		occs := e.extractParagraph(para, dollarTickers)
		if len(occs) == 0 {
			continue
		}
		groups = append(groups, Paragraph{Index: i, Occurrences: occs})
	}
	return groups, nil
}

// SplitParagraphs splits text into paragraphs on blank-line runs and on
// newlines immediately preceding a Markdown heading (#–###). Paragraphs
// under the minimum payload are dropped.
func SplitParagraphs(text string) []string {
	lines := strings.Split(text, "\n")
	var paras []string
	var cur []string

	flush := func() {
		if len(cur) == 0 {
			return
		}
		paras = append(paras, strings.Join(cur, "\n"))
		cur = nil
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if headerRe.MatchString(line) {
			flush()
		}
		cur = append(cur, line)
	}
	flush()

	out := paras[:0]
	for _, p := range paras {
		if len(strings.TrimSpace(p)) >= minParagraphPayload {
			out = append(out, p)
		}
	}
	return out
}

func (e *Extractor) extractParagraph(para string, dollarTickers map[string]bool) []Occurrence {
	var occs []Occurrence

	occs = append(occs, extractHeaders(para)...)
	occs = append(occs, extractBoldConcepts(para)...)
	occs = append(occs, e.extractTickers(para, dollarTickers)...)
	occs = append(occs, e.tools.scan(para)...)
	occs = append(occs, e.extractProjects(para)...)
	occs = append(occs, extractBacktickTokens(para)...)
	occs = append(occs, extractURLs(para)...)
	occs = append(occs, extractDecisions(para)...)

	// The NLP pass runs last so lexicon hits win type conflicts.
	lexiconLabels := make(map[string]bool, len(occs))
	for _, o := range occs {
		lexiconLabels[Normalize(o.Label)] = true
	}
	occs = append(occs, extractProperNouns(para, lexiconLabels)...)

	return dedupe(occs)
}

func extractHeaders(para string) []Occurrence {
	var out []Occurrence
	for _, line := range strings.Split(para, "\n") {
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		if len(text) < 3 || len(text) > 40 {
			continue
		}
		if listMarkerRe.MatchString(text) {
			continue
		}
		out = append(out, Occurrence{Label: text, Type: "header"})
	}
	return out
}

func extractBoldConcepts(para string) []Occurrence {
	var out []Occurrence
	for _, m := range boldRe.FindAllStringSubmatch(para, -1) {
		text := strings.TrimSpace(m[1])
		if len(text) < 3 || len(text) > 40 {
			continue
		}
		out = append(out, Occurrence{Label: text, Type: "concept"})
	}
	return out
}

func (e *Extractor) extractTickers(para string, dollarTickers map[string]bool) []Occurrence {
	var out []Occurrence
	for _, run := range tickerRe.FindAllString(para, -1) {
		if e.tickerWhitelist[run] {
			out = append(out, Occurrence{Label: run, Type: "ticker"})
			continue
		}
		if e.tickerStoplist[run] {
			continue
		}
		if dollarTickers[run] {
			out = append(out, Occurrence{Label: run, Type: "ticker"})
		}
	}
	return out
}

func (e *Extractor) extractProjects(para string) []Occurrence {
	var out []Occurrence
	for _, p := range e.projects {
		if p.re.MatchString(para) {
			out = append(out, Occurrence{Label: p.name, Type: "project"})
		}
	}
	return out
}

func extractBacktickTokens(para string) []Occurrence {
	var out []Occurrence
	for _, m := range backtickRe.FindAllStringSubmatch(para, -1) {
		out = append(out, Occurrence{Label: m[1], Type: "tool"})
	}
	return out
}

func extractURLs(para string) []Occurrence {
	var out []Occurrence
	for _, raw := range urlRe.FindAllString(para, -1) {
		url := strings.TrimRight(raw, ".,;:!?'\"")
		if url == "" {
			continue
		}
		out = append(out, Occurrence{Label: url, Type: "url"})
	}
	return out
}

func extractDecisions(para string) []Occurrence {
	var out []Occurrence
	add := func(text string) {
		text = strings.TrimSpace(text)
		if len(text) < 6 || len(text) > 99 {
			return
		}
		out = append(out, Occurrence{Label: text, Type: "decision"})
	}

	for _, m := range taskDoneRe.FindAllStringSubmatch(para, -1) {
		add(m[1])
	}
	for _, m := range decisionRe.FindAllStringSubmatch(para, -1) {
		add(decisionStopRe.ReplaceAllString(m[1], ""))
	}
	return out
}

// dedupe collapses occurrences sharing a node id, keeping the first
// surface form seen. Labels that normalize to nothing are dropped.
func dedupe(occs []Occurrence) []Occurrence {
	seen := make(map[string]bool, len(occs))
	out := occs[:0]
	for _, o := range occs {
		if Normalize(o.Label) == "" {
			continue
		}
		id := o.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, o)
	}
	return out
}

// Normalize produces the canonical label form used in node ids:
// lower-cased, whitespace collapsed to underscores, everything outside
// [a-z0-9_-] dropped, truncated to 100 bytes.
func Normalize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	s := strings.Trim(b.String(), "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

func toUpperSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.ToUpper(strings.TrimSpace(it))
		if it != "" {
			out[it] = true
		}
	}
	return out
}
