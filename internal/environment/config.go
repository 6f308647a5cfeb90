package environment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/programme-lv/trainer/internal/xdg"
)

const (
	AppName        = "trainer"
	ConfigFilename = "trainer.toml"
	ConfigEnvVar   = "TRAINER_CONFIG"
)

// Config is the trainer's TOML configuration file.
type Config struct {
	TimeoutMs        int64    `toml:"timeout_ms"`
	CompileTimeoutMs int64    `toml:"compile_timeout_ms"`
	OutputLimitBytes int      `toml:"output_limit_bytes"`
	WorkspaceRoot    string   `toml:"workspace_root"`
	EnabledLanguages []string `toml:"enabled_languages"`

	OCaml OCamlSection `toml:"ocaml"`
	Java  JavaSection  `toml:"java"`
	C     CSection     `toml:"c"`
}

type OCamlSection struct {
	Interpreter string   `toml:"interpreter"`
	Flags       []string `toml:"flags"`
}

type JavaSection struct {
	Compiler     string   `toml:"compiler"`
	Runtime      string   `toml:"runtime"`
	CompileFlags []string `toml:"compile_flags"`
	RunFlags     []string `toml:"run_flags"`
}

type CSection struct {
	Compiler     string   `toml:"compiler"`
	CompileFlags []string `toml:"compile_flags"`
	LinkFlags    []string `toml:"link_flags"`
}

func DefaultConfig() *Config {
	tc := toolchain.DefaultConfig()
	langs := make([]string, 0, len(tc.Enabled))
	for _, l := range tc.Enabled {
		langs = append(langs, string(l))
	}
	return &Config{
		TimeoutMs:        tc.Limits.Timeout.Milliseconds(),
		CompileTimeoutMs: tc.Limits.CompileTimeout.Milliseconds(),
		OutputLimitBytes: tc.Limits.OutputLimitBytes,
		WorkspaceRoot:    filepath.Join(xdg.NewDirs().AppRuntimeDir(AppName), "workspaces"),
		EnabledLanguages: langs,
		OCaml:            OCamlSection{Interpreter: tc.OCaml.Interpreter},
		Java:             JavaSection{Compiler: tc.Java.Compiler, Runtime: tc.Java.Runtime},
		C:                CSection{Compiler: tc.C.Compiler},
	}
}

// ResolveConfigPath picks the config file to load: the explicit path if
// given, then $TRAINER_CONFIG, then trainer/trainer.toml in the XDG config
// dirs. An empty result means built-in defaults.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}
	if p, ok := xdg.NewDirs().FindConfigFile(AppName, ConfigFilename); ok {
		return p
	}
	return ""
}

// LoadConfig reads path over the defaults. Fields absent from the file keep
// their default values; unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := ParseConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data into cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMs)
	}
	if c.CompileTimeoutMs <= 0 {
		return fmt.Errorf("compile_timeout_ms must be positive, got %d", c.CompileTimeoutMs)
	}
	if c.OutputLimitBytes <= 0 {
		return fmt.Errorf("output_limit_bytes must be positive, got %d", c.OutputLimitBytes)
	}
	if c.WorkspaceRoot == "" {
		return fmt.Errorf("workspace_root must not be empty")
	}
	if len(c.EnabledLanguages) == 0 {
		return fmt.Errorf("enabled_languages must list at least one language")
	}
	for _, l := range c.EnabledLanguages {
		if _, err := toolchain.ParseLanguage(l); err != nil {
			return fmt.Errorf("enabled_languages: %w", err)
		}
	}
	return nil
}

func (c *Config) Limits() toolchain.Limits {
	return toolchain.Limits{
		Timeout:          time.Duration(c.TimeoutMs) * time.Millisecond,
		CompileTimeout:   time.Duration(c.CompileTimeoutMs) * time.Millisecond,
		OutputLimitBytes: c.OutputLimitBytes,
	}
}

// Toolchain converts the file into the configuration of the language drivers.
func (c *Config) Toolchain() (toolchain.Config, error) {
	enabled := make([]toolchain.Language, 0, len(c.EnabledLanguages))
	for _, l := range c.EnabledLanguages {
		lang, err := toolchain.ParseLanguage(l)
		if err != nil {
			return toolchain.Config{}, err
		}
		enabled = append(enabled, lang)
	}
	return toolchain.Config{
		Limits:  c.Limits(),
		Enabled: enabled,
		OCaml: toolchain.OCamlConfig{
			Interpreter: c.OCaml.Interpreter,
			Flags:       c.OCaml.Flags,
		},
		Java: toolchain.JavaConfig{
			Compiler:     c.Java.Compiler,
			Runtime:      c.Java.Runtime,
			CompileFlags: c.Java.CompileFlags,
			RunFlags:     c.Java.RunFlags,
		},
		C: toolchain.CConfig{
			Compiler:     c.C.Compiler,
			CompileFlags: c.C.CompileFlags,
			LinkFlags:    c.C.LinkFlags,
		},
	}, nil
}
