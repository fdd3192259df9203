package extract

import (
	"regexp"
	"sort"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// defaultTickerWhitelist holds symbols that classify as tickers even
// without a $-prefixed sighting in the document.
var defaultTickerWhitelist = toUpperSet([]string{
	"AAPL", "AMD", "AMZN", "ARM", "AVGO", "BTC", "COIN", "CRM", "CRWD",
	"DIS", "ETH", "GME", "GOOG", "GOOGL", "HOOD", "IBM", "INTC", "META",
	"MSFT", "MU", "NET", "NFLX", "NVDA", "ORCL", "PLTR", "PYPL", "QQQ",
	"SHOP", "SMCI", "SNOW", "SOL", "SPY", "SQ", "TSLA", "TSM", "UBER",
	"VTI", "VOO", "XOM",
})

// defaultTickerStoplist holds short uppercase English words and common
// acronyms that must never be classified as tickers, $-prefix or not.
var defaultTickerStoplist = toUpperSet([]string{
	"AM", "AN", "AND", "ANY", "API", "APP", "ARE", "AS", "ASAP", "AT",
	"BE", "BIG", "BUT", "BY", "CAN", "CEO", "CFO", "CI", "CLI", "CPU",
	"CSS", "CSV", "CTO", "DAY", "DB", "DID", "DNS", "DO", "DOC", "EOD",
	"ETA", "FAQ", "FIX", "FOR", "FYI", "GET", "GPU", "GUI", "HAD", "HAS",
	"HER", "HIM", "HIS", "HOW", "HTML", "HTTP", "ID", "IDE", "IF", "IN",
	"IP", "IS", "IT", "ITS", "JSON", "KEY", "LGTM", "LLM", "LOW", "MAN",
	"MAX", "MIN", "ML", "MY", "NEW", "NO", "NOT", "NOW", "OF", "OK",
	"OLD", "ON", "ONE", "OR", "OS", "OUR", "OUT", "PDF", "PM", "PR",
	"QA", "RAM", "RSS", "RUN", "SDK", "SEE", "SET", "SO", "SQL", "SSH",
	"TCP", "THE", "TIL", "TLS", "TO", "TODO", "TOP", "TWO", "UDP", "UI",
	"UP", "URL", "US", "USA", "USE", "UX", "VPN", "WAS", "WAY", "WE",
	"WHO", "WHY", "WIP", "YAML", "YES", "YOU",
})

// defaultToolLexicon is the closed tool/technology list matched
// case-insensitively on word boundaries. Each entry is its own
// canonical label; no two entries are folded together.
var defaultToolLexicon = []string{
	"docker", "podman", "kubernetes", "k8s", "containerd", "terraform",
	"ansible", "pulumi", "jenkins", "circleci", "travis",
	"github actions", "gitlab", "argocd", "aws", "gcp", "azure",
	"cloudflare", "hetzner", "digitalocean", "fly.io", "vercel",
	"netlify", "nginx", "caddy", "haproxy", "redis", "memcached",
	"postgres", "postgresql", "sqlite", "mysql", "mongodb", "kafka",
	"rabbitmq", "nats", "grafana", "prometheus", "datadog", "sentry",
	"tailscale", "wireguard", "systemd", "tmux", "neovim", "vim",
	"vscode", "obsidian", "golang", "rust", "python", "typescript",
	"javascript", "node.js", "nodejs", "deno", "bun", "react", "svelte",
	"angular", "websocket", "graphql", "grpc", "protobuf", "openapi",
	"ffmpeg", "whisper", "ollama", "pandoc", "jq", "ripgrep", "fzf",
}

// defaultProjectPatterns maps canonical project names to the regex that
// detects them. Multi-word, matched case-insensitively.
var defaultProjectPatterns = map[string]string{
	"Asymmetry Scanner": `(?i)\basymmetry[ -]scanner\b`,
	"Knowledge Engine":  `(?i)\bknowledge[ -]engine\b`,
	"Memory City":       `(?i)\bmemory[ -]city\b`,
	"Morning Brief":     `(?i)\bmorning[ -]brief\b`,
	"Trade Journal":     `(?i)\btrade[ -]journal\b`,
}

type projectPattern struct {
	name string
	re   *regexp.Regexp
}

func compileProjectPatterns(patterns map[string]string) []projectPattern {
	// Sorted for deterministic extraction order.
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]projectPattern, 0, len(names))
	for _, name := range names {
		out = append(out, projectPattern{name: name, re: regexp.MustCompile(patterns[name])})
	}
	return out
}

// toolScanner matches the tool lexicon in a single pass using an
// Aho-Corasick automaton.
type toolScanner struct {
	ac       ahocorasick.AhoCorasick
	patterns []string
}

func newToolScanner(lexicon []string) *toolScanner {
	patterns := make([]string, len(lexicon))
	copy(patterns, lexicon)
	sort.Strings(patterns)

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	return &toolScanner{
		ac:       builder.Build(patterns),
		patterns: patterns,
	}
}

func (s *toolScanner) scan(text string) []Occurrence {
	var out []Occurrence
	for _, m := range s.ac.FindAll(text) {
		out = append(out, Occurrence{Label: s.patterns[m.Pattern()], Type: "tool"})
	}
	return out
}
