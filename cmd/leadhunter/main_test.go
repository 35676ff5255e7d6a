package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
)

func TestApplyOptionsKeepsConfigHeadless(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.Headless = false // from a config file

	applyOptions(cfg, runOptions{
		headless:   true, // flag default, not passed
		fromConfig: true,
		passed:     map[string]bool{},
	})
	assert.False(t, cfg.Browser.Headless, "flag default must not clobber the config file")

	applyOptions(cfg, runOptions{
		headless:   true,
		fromConfig: true,
		passed:     map[string]bool{"headless": true},
	})
	assert.True(t, cfg.Browser.Headless, "an explicit flag wins over the config file")
}

func TestApplyOptionsBlanksUnsetSearchParams(t *testing.T) {
	cfg := config.CreateDefault()
	applyOptions(cfg, runOptions{passed: map[string]bool{}})

	assert.Zero(t, cfg.Search.MaxResults, "unset max is asked interactively")
	assert.Empty(t, cfg.Search.Sources)
	assert.Empty(t, cfg.Search.OutputFile)
}

func TestApplyOptionsConfigBaselineSurvives(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Search.MaxResults = 25
	cfg.Search.Sources = []string{"yellow_pages"}
	cfg.Search.OutputFile = "custom.xlsx"

	applyOptions(cfg, runOptions{fromConfig: true, passed: map[string]bool{}})

	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, []string{"yellow_pages"}, cfg.Search.Sources)
	assert.Equal(t, "custom.xlsx", cfg.Search.OutputFile)
}

func TestParseSourceChoice(t *testing.T) {
	assert.Equal(t, []string{"google_maps"}, parseSourceChoice("1"))
	assert.Equal(t, []string{"yellow_pages"}, parseSourceChoice("Yellow Pages"))
	assert.Equal(t, []string{"google_maps", "yellow_pages"}, parseSourceChoice("3"))
	assert.Equal(t, []string{"google_maps", "yellow_pages"}, parseSourceChoice("both"))
	assert.Equal(t, []string{"google_maps"}, parseSourceChoice("nonsense"), "unrecognized input falls back to the default source")
}
