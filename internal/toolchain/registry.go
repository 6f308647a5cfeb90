package toolchain

import (
	"fmt"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Config is everything needed to build the drivers of a Registry.
type Config struct {
	Limits  Limits
	Enabled []Language
	OCaml   OCamlConfig
	Java    JavaConfig
	C       CConfig
}

func DefaultConfig() Config {
	return Config{
		Limits:  DefaultLimits(),
		Enabled: []Language{LanguageOCaml, LanguageJava, LanguageC},
		OCaml:   OCamlConfig{Interpreter: "ocaml"},
		Java:    JavaConfig{Compiler: "javac", Runtime: "java"},
		C:       CConfig{Compiler: "gcc"},
	}
}

// Registry maps a language tag to its driver. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	drivers map[Language]Driver
	enabled mapset.Set[Language]
}

func NewRegistry(drivers ...Driver) (*Registry, error) {
	reg := &Registry{
		drivers: make(map[Language]Driver, len(drivers)),
		enabled: mapset.NewThreadUnsafeSet[Language](),
	}
	for _, d := range drivers {
		if d == nil {
			return nil, fmt.Errorf("driver cannot be nil")
		}
		lang := d.Language()
		if lang == "" {
			return nil, fmt.Errorf("driver missing language identifier")
		}
		if reg.enabled.Contains(lang) {
			return nil, fmt.Errorf("duplicate driver for language %q", lang)
		}
		reg.drivers[lang] = d
		reg.enabled.Add(lang)
	}
	if len(reg.drivers) == 0 {
		return nil, fmt.Errorf("at least one language must be enabled")
	}
	return reg, nil
}

// NewRegistryFromConfig builds drivers for every enabled language.
func NewRegistryFromConfig(cfg Config, logger *slog.Logger) (*Registry, error) {
	if err := cfg.Limits.Validate(); err != nil {
		return nil, err
	}
	exec := newExecutor(cfg.Limits, logger)

	enabled := mapset.NewThreadUnsafeSet(cfg.Enabled...)
	var drivers []Driver
	for _, lang := range enabled.ToSlice() {
		switch lang {
		case LanguageOCaml:
			if cfg.OCaml.Interpreter == "" {
				return nil, fmt.Errorf("ocaml interpreter not configured")
			}
			drivers = append(drivers, &ocamlDriver{cfg: cfg.OCaml, exec: exec})
		case LanguageJava:
			if cfg.Java.Compiler == "" || cfg.Java.Runtime == "" {
				return nil, fmt.Errorf("java compiler and runtime must be configured")
			}
			drivers = append(drivers, &javaDriver{cfg: cfg.Java, exec: exec})
		case LanguageC:
			if cfg.C.Compiler == "" {
				return nil, fmt.Errorf("c compiler not configured")
			}
			drivers = append(drivers, &cDriver{cfg: cfg.C, exec: exec})
		default:
			return nil, fmt.Errorf("unsupported language %q", lang)
		}
	}
	return NewRegistry(drivers...)
}

// Driver returns the driver for lang or an unsupported language error.
func (r *Registry) Driver(lang Language) (Driver, error) {
	d, ok := r.drivers[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	return d, nil
}

// Lookup parses a raw language tag and returns its driver.
func (r *Registry) Lookup(tag string) (Driver, error) {
	lang, err := ParseLanguage(tag)
	if err != nil {
		return nil, err
	}
	return r.Driver(lang)
}

// Languages lists the enabled languages in sorted order.
func (r *Registry) Languages() []Language {
	langs := r.enabled.ToSlice()
	slices.Sort(langs)
	return langs
}
