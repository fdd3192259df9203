package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Workspace.DebounceMS != 500 {
		t.Errorf("debounce = %d, want 500", cfg.Workspace.DebounceMS)
	}
	if !cfg.Workspace.RebuildOnDelete {
		t.Error("rebuild-on-delete should default true")
	}
	if cfg.Layout.Iterations != 150 || cfg.Layout.Bounds != 80 || cfg.Layout.MaxConnections != 150 {
		t.Errorf("layout defaults = %+v", cfg.Layout)
	}
	if cfg.Decay.HalfLives["ticker"] != 7*24*time.Hour {
		t.Errorf("ticker half-life = %v", cfg.Decay.HalfLives["ticker"])
	}
	if cfg.Decay.SourceWeights[0].Pattern != "SOUL.md" || cfg.Decay.SourceWeights[0].Multiplier != 5.0 {
		t.Errorf("first source weight = %+v", cfg.Decay.SourceWeights[0])
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MINDCITY_WORKSPACE_PATH", "/tmp/ws")
	t.Setenv("MINDCITY_DEBOUNCE_MS", "250")
	t.Setenv("MINDCITY_REBUILD_ON_DELETE", "false")
	t.Setenv("MINDCITY_LAYOUT_ITERATIONS", "10")
	t.Setenv("MINDCITY_TICKER_WHITELIST", "NVDA, TSLA ,AMD")
	t.Setenv("MINDCITY_HALF_LIVES_BY_TYPE", "ticker=2,tool=120")
	t.Setenv("MINDCITY_SOURCE_WEIGHTS_BY_PATTERN", "CORE.md=4.5,memory/=1")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workspace.Path != "/tmp/ws" {
		t.Errorf("workspace = %q", cfg.Workspace.Path)
	}
	if cfg.Workspace.DebounceMS != 250 {
		t.Errorf("debounce = %d", cfg.Workspace.DebounceMS)
	}
	if cfg.Workspace.RebuildOnDelete {
		t.Error("rebuild-on-delete override ignored")
	}
	if cfg.Layout.Iterations != 10 {
		t.Errorf("iterations = %d", cfg.Layout.Iterations)
	}
	if len(cfg.Extract.TickerWhitelist) != 3 || cfg.Extract.TickerWhitelist[1] != "TSLA" {
		t.Errorf("whitelist = %v", cfg.Extract.TickerWhitelist)
	}
	if cfg.Decay.HalfLives["ticker"] != 2*24*time.Hour {
		t.Errorf("ticker half-life = %v", cfg.Decay.HalfLives["ticker"])
	}
	if cfg.Decay.HalfLives["url"] != 14*24*time.Hour {
		t.Error("unrelated half-life rows should survive a partial override")
	}
	if len(cfg.Decay.SourceWeights) != 2 || cfg.Decay.SourceWeights[0].Pattern != "CORE.md" {
		t.Errorf("source weights = %+v", cfg.Decay.SourceWeights)
	}
}

func TestParseHalfLives(t *testing.T) {
	hl, err := ParseHalfLives("ticker=7, url=14")
	if err != nil {
		t.Fatal(err)
	}
	if hl["ticker"] != 7*24*time.Hour || hl["url"] != 14*24*time.Hour {
		t.Errorf("parsed = %v", hl)
	}

	if _, err := ParseHalfLives("ticker"); err == nil {
		t.Error("missing value accepted")
	}
	if _, err := ParseHalfLives("ticker=-1"); err == nil {
		t.Error("negative days accepted")
	}
}

func TestParseSourceWeightsPreservesOrder(t *testing.T) {
	sw, err := ParseSourceWeights("SOUL.md=5,MEMORY.md=3,memory/=1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sw) != 3 || sw[0].Pattern != "SOUL.md" || sw[2].Pattern != "memory/" {
		t.Errorf("parsed = %+v", sw)
	}

	if _, err := ParseSourceWeights("x=notanumber"); err == nil {
		t.Error("bad multiplier accepted")
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Bind = "0.0.0.0"
	cfg.Server.Port = 9999
	if got := cfg.ListenAddr(); got != "0.0.0.0:9999" {
		t.Errorf("addr = %q", got)
	}
}
