package toolchain_test

import (
	"testing"

	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg := newRegistry(t, toolchain.DefaultConfig())

	assert.Equal(t,
		[]toolchain.Language{toolchain.LanguageC, toolchain.LanguageJava, toolchain.LanguageOCaml},
		reg.Languages())

	d, err := reg.Lookup(" Java ")
	require.NoError(t, err)
	assert.Equal(t, toolchain.LanguageJava, d.Language())
	assert.Equal(t, toolchain.Managed, d.Variant())
	assert.Equal(t, "Main.java", d.SourceFilename())

	_, err = reg.Lookup("python")
	require.ErrorContains(t, err, "unsupported language")
}

func TestRegistryOnlyEnabledLanguages(t *testing.T) {
	cfg := toolchain.DefaultConfig()
	cfg.Enabled = []toolchain.Language{toolchain.LanguageC, toolchain.LanguageC}
	reg := newRegistry(t, cfg)

	assert.Equal(t, []toolchain.Language{toolchain.LanguageC}, reg.Languages())
	_, err := reg.Driver(toolchain.LanguageOCaml)
	require.ErrorContains(t, err, "unsupported language")
}

func TestRegistryRejectsBadConfig(t *testing.T) {
	cfg := toolchain.DefaultConfig()
	cfg.Enabled = nil
	_, err := toolchain.NewRegistryFromConfig(cfg, nil)
	require.Error(t, err)

	cfg = toolchain.DefaultConfig()
	cfg.Limits.Timeout = 0
	_, err = toolchain.NewRegistryFromConfig(cfg, nil)
	require.Error(t, err)

	cfg = toolchain.DefaultConfig()
	cfg.C.Compiler = ""
	_, err = toolchain.NewRegistryFromConfig(cfg, nil)
	require.Error(t, err)

	_, err = toolchain.NewRegistry(nil)
	require.Error(t, err)
}
