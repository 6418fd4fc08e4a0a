package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultBundleLoadsAndValidates(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.EnglishAllowlist)
	require.True(t, cfg.IsEnglishAllowlisted("go"))
	require.True(t, cfg.IsParticle("wa"))
	require.False(t, cfg.IsParticle("go"))

	f, ok := cfg.Feature("exactMatch")
	require.True(t, ok)
	require.Equal(t, 1.0, f.Weight)
	require.True(t, f.Enabled)

	require.Equal(t, "sigmoid", cfg.Frequency.Shape)
	require.Equal(t, 3, cfg.Limits.KanjiShortMaxLen)
}

func TestLoadRejectsMalformedBundle(t *testing.T) {
	_, err := Load([]byte(`{"limits": {}}`))
	require.Error(t, err)
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	_, err := Load([]byte(`not json`))
	require.Error(t, err)
}

func TestCoreHeadwordsMapping(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"星", "恒星"}, cfg.CoreHeadwords["star"])
}
