package environment_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/trainer/internal/environment"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := environment.LoadConfig("")
	require.NoError(t, err)

	limits := cfg.Limits()
	assert.Equal(t, 10*time.Second, limits.Timeout)
	assert.Equal(t, 30*time.Second, limits.CompileTimeout)
	assert.Equal(t, 1<<20, limits.OutputLimitBytes)
	assert.ElementsMatch(t, []string{"ocaml", "java", "c"}, cfg.EnabledLanguages)
	assert.NotEmpty(t, cfg.WorkspaceRoot)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
timeout_ms = 2500
workspace_root = "/srv/trainer"
enabled_languages = ["c", "java"]

[c]
compiler = "clang"
compile_flags = ["-O2", "-std=c11"]
link_flags = ["-lm"]
`), 0644))

	cfg, err := environment.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), cfg.TimeoutMs)
	assert.Equal(t, int64(30000), cfg.CompileTimeoutMs)
	assert.Equal(t, "/srv/trainer", cfg.WorkspaceRoot)

	tc, err := cfg.Toolchain()
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, tc.Limits.Timeout)
	assert.Equal(t, []toolchain.Language{toolchain.LanguageC, toolchain.LanguageJava}, tc.Enabled)
	assert.Equal(t, "clang", tc.C.Compiler)
	assert.Equal(t, []string{"-O2", "-std=c11"}, tc.C.CompileFlags)
	assert.Equal(t, []string{"-lm"}, tc.C.LinkFlags)
	assert.Equal(t, "javac", tc.Java.Compiler)
	assert.Equal(t, "java", tc.Java.Runtime)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative timeout":  `timeout_ms = -1`,
		"zero output limit": `output_limit_bytes = 0`,
		"unknown language":  `enabled_languages = ["cobol"]`,
		"no languages":      `enabled_languages = []`,
		"unknown key":       `time_limit = 5`,
		"bad syntax":        `timeout_ms = `,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			err := environment.ParseConfig([]byte(data), environment.DefaultConfig())
			require.Error(t, err)
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	t.Setenv(environment.ConfigEnvVar, "")
	assert.Equal(t, "", environment.ResolveConfigPath(""))

	t.Setenv(environment.ConfigEnvVar, "/etc/trainer.toml")
	assert.Equal(t, "/etc/trainer.toml", environment.ResolveConfigPath(""))
	assert.Equal(t, "/tmp/x.toml", environment.ResolveConfigPath("/tmp/x.toml"))
}

func TestReadEnvConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("MAX_CONCURRENT", "3")
	t.Setenv("LOG_LEVEL", "")

	env, err := environment.ReadEnvConfig()
	require.NoError(t, err)
	assert.Equal(t, "nats://broker:4222", env.NatsUrl)
	assert.Equal(t, 3, env.MaxConcurrent)
	assert.Equal(t, "info", env.LogLevel)

	t.Setenv("MAX_CONCURRENT", "zero")
	_, err = environment.ReadEnvConfig()
	require.Error(t, err)
}
