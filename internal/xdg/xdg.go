package xdg

import (
	"os"
	"path/filepath"
)

// Dirs resolves the XDG base directories the trainer needs: where to look
// for its config file and where to keep per-run scratch space.
type Dirs struct {
	configHome string
	configDirs []string
	runtimeDir string
}

// NewDirs reads the XDG environment variables, falling back to the standard
// XDG defaults.
func NewDirs() *Dirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = os.TempDir()
		}
	}

	d := &Dirs{}

	d.configHome = os.Getenv("XDG_CONFIG_HOME")
	if d.configHome == "" {
		d.configHome = filepath.Join(homeDir, ".config")
	}

	if env := os.Getenv("XDG_CONFIG_DIRS"); env != "" {
		d.configDirs = filepath.SplitList(env)
	} else {
		d.configDirs = []string{"/etc/xdg"}
	}

	d.runtimeDir = os.Getenv("XDG_RUNTIME_DIR")
	if d.runtimeDir == "" {
		d.runtimeDir = filepath.Join(os.TempDir(), "trainer-runtime-"+os.Getenv("USER"))
	}

	return d
}

func (d *Dirs) ConfigHome() string { return d.configHome }
func (d *Dirs) RuntimeDir() string { return d.runtimeDir }

// ConfigDirs returns the preference-ordered base directories for config files.
func (d *Dirs) ConfigDirs() []string {
	return append([]string{d.configHome}, d.configDirs...)
}

func (d *Dirs) AppRuntimeDir(appName string) string {
	return filepath.Join(d.runtimeDir, appName)
}

// FindConfigFile returns the first existing appName/fname in ConfigDirs.
func (d *Dirs) FindConfigFile(appName, fname string) (string, bool) {
	for _, dir := range d.ConfigDirs() {
		p := filepath.Join(dir, appName, fname)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}
