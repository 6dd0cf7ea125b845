package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSelectorRulesDefaults(t *testing.T) {
	rules, err := LoadSelectorRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSelectorRules(), rules)
	assert.Equal(t, ".product-title", rules.Title[0])
	assert.Equal(t, `a[href*="/products/"]`, rules.Title[len(rules.Title)-1])
}

func TestLoadSelectorRulesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := "title:\n  - .card__heading\n  - h2\nhigh_res_suffix: _1024x1024\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	rules, err := LoadSelectorRules(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".card__heading", "h2"}, rules.Title)
	assert.Equal(t, "_1024x1024", rules.HighResSuffix)
	// untouched sections keep their defaults
	assert.Equal(t, DefaultSelectorRules().Price, rules.Price)
	assert.Equal(t, DefaultSelectorRules().ProductLink, rules.ProductLink)
}

func TestLoadSelectorRulesBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unterminated"), 0644))

	_, err := LoadSelectorRules(path)
	assert.Error(t, err)

	_, err = LoadSelectorRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
