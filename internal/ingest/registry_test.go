package ingest

import (
	"testing"
)

func TestLoadRegistryEmbedded(t *testing.T) {
	reg, err := LoadRegistry("config/sources.yaml")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Sources) == 0 {
		t.Fatal("registry has no sources")
	}

	src, err := reg.FindSource("cvpp_award_notices")
	if err != nil {
		t.Fatalf("FindSource: %v", err)
	}
	if src.Country != "LT" {
		t.Errorf("country = %q, want LT", src.Country)
	}
	if len(src.Seeds) == 0 {
		t.Error("source has no seed URLs")
	}
	if src.Selectors.Container == "" || src.Selectors.Link == "" {
		t.Errorf("incomplete selectors: %+v", src.Selectors)
	}
	if src.Fetch.RateLimitRPS <= 0 {
		t.Errorf("rate limit not set: %+v", src.Fetch)
	}
}

func TestFindSourceUnknown(t *testing.T) {
	reg := &Registry{Sources: []SourceConfig{{ID: "a"}}}
	if _, err := reg.FindSource("nope"); err == nil {
		t.Fatal("want error for unknown source id")
	}
}
