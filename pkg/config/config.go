// Package config loads wslkit's layered configuration: embedded TOML
// defaults, then /etc/wslkit.toml, then the user's XDG config file. Later
// layers override earlier ones key by key.
package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/wslkit/wslkit/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Backup configures the backup-then-mutate guard.
type Backup struct {
	Suffix string `koanf:"suffix" toml:"suffix"`
}

// Ansible configures the control-node bootstrap.
type Ansible struct {
	ProjectDirname    string   `koanf:"project_dirname" toml:"project_dirname"`
	ProjectSubdirs    []string `koanf:"project_subdirs" toml:"project_subdirs"`
	AptPackages       []string `koanf:"apt_packages" toml:"apt_packages"`
	PipPackages       []string `koanf:"pip_packages" toml:"pip_packages"`
	GalaxyCollections []string `koanf:"galaxy_collections" toml:"galaxy_collections"`
}

// Yubikey configures the sudo hardening flow.
type Yubikey struct {
	UdevRulePath       string   `koanf:"udev_rule_path" toml:"udev_rule_path"`
	UdevRule           string   `koanf:"udev_rule" toml:"udev_rule"`
	PamSudoPath        string   `koanf:"pam_sudo_path" toml:"pam_sudo_path"`
	AuthfileRelpath    string   `koanf:"authfile_relpath" toml:"authfile_relpath"`
	EnrollPackages     []string `koanf:"enroll_packages" toml:"enroll_packages"`
	PostEnrollPackages []string `koanf:"post_enroll_packages" toml:"post_enroll_packages"`
}

// Config is the effective wslkit configuration for a run.
type Config struct {
	Backup  Backup  `koanf:"backup" toml:"backup"`
	Ansible Ansible `koanf:"ansible" toml:"ansible"`
	Yubikey Yubikey `koanf:"yubikey" toml:"yubikey"`
}

// rawBytesProvider implements a koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// overrideFiles returns the override paths in ascending precedence.
func overrideFiles() []string {
	return []string{
		"/etc/wslkit.toml",
		filepath.Join(xdg.ConfigHome, "wslkit", "config.toml"),
	}
}

// Load builds the effective configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. System-wide, then per-user overrides
	for _, path := range overrideFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal config")
	}
	return &cfg, nil
}

// Default returns the built-in configuration with no file overrides applied.
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal config")
	}
	return &cfg, nil
}

// Dump renders a configuration back to TOML, for `wslkit config`.
func Dump(cfg *Config) (string, error) {
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to marshal config")
	}
	return string(out), nil
}
