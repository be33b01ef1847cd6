// Package config holds the user-facing notification settings and a yaml
// file store for them. Older documents may omit whole sections; anything
// missing takes the defaults, so upgrades never lose a working setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scope selects which worlds produce notifications.
type Scope string

const (
	ScopeHomeworld  Scope = "homeworld"
	ScopeDatacenter Scope = "datacenter"
	ScopeAll        Scope = "all"
)

// OutputFormat selects how an open plot is rendered in chat.
type OutputFormat string

const (
	FormatSimple OutputFormat = "simple"
	FormatPings  OutputFormat = "pings"
	FormatCustom OutputFormat = "custom"
)

// The five purchasable districts, by territory type id.
const (
	DistrictMist         = 339
	DistrictLavenderBeds = 340
	DistrictGoblet       = 341
	DistrictShirogane    = 641
	DistrictEmpyreum     = 979
)

// DistrictNotif is the per-district notification switchboard.
type DistrictNotif struct {
	Small       bool `yaml:"small"`
	Medium      bool `yaml:"medium"`
	Large       bool `yaml:"large"`
	FreeCompany bool `yaml:"free_company"`
	Individual  bool `yaml:"individual"`
}

// Config is the persisted user configuration document.
type Config struct {
	Enabled bool `yaml:"enabled"`

	Mist         DistrictNotif `yaml:"mist"`
	LavenderBeds DistrictNotif `yaml:"lavender_beds"`
	Goblet       DistrictNotif `yaml:"goblet"`
	Shirogane    DistrictNotif `yaml:"shirogane"`
	Empyreum     DistrictNotif `yaml:"empyreum"`

	Scope          Scope        `yaml:"scope"`
	Format         OutputFormat `yaml:"format"`
	CustomTemplate string       `yaml:"custom_template,omitempty"`
	ChatChannel    string       `yaml:"chat_channel,omitempty"`

	AnnounceSweepProgress bool `yaml:"announce_sweep_progress"`
}

func defaultDistrict() DistrictNotif {
	return DistrictNotif{Small: true, Medium: true, Large: true, FreeCompany: true, Individual: true}
}

// Defaults returns the configuration a fresh install gets.
func Defaults() Config {
	return Config{
		Enabled:               true,
		Mist:                  defaultDistrict(),
		LavenderBeds:          defaultDistrict(),
		Goblet:                defaultDistrict(),
		Shirogane:             defaultDistrict(),
		Empyreum:              defaultDistrict(),
		Scope:                 ScopeHomeworld,
		Format:                FormatSimple,
		AnnounceSweepProgress: true,
	}
}

// Normalize fills unset enum fields with their defaults.
func (c *Config) Normalize() {
	if c.Scope == "" {
		c.Scope = ScopeHomeworld
	}
	if c.Format == "" {
		c.Format = FormatSimple
	}
	c.Scope = Scope(strings.ToLower(string(c.Scope)))
	c.Format = OutputFormat(strings.ToLower(string(c.Format)))
}

// Validate rejects enum values outside the recognized sets.
func (c *Config) Validate() error {
	switch c.Scope {
	case ScopeHomeworld, ScopeDatacenter, ScopeAll:
	default:
		return fmt.Errorf("config: unknown scope %q", c.Scope)
	}
	switch c.Format {
	case FormatSimple, FormatPings, FormatCustom:
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	return nil
}

// District returns the notification switchboard for a territory type id and
// whether the district is one of the five recognized ones.
func (c *Config) District(districtID uint16) (DistrictNotif, bool) {
	switch districtID {
	case DistrictMist:
		return c.Mist, true
	case DistrictLavenderBeds:
		return c.LavenderBeds, true
	case DistrictGoblet:
		return c.Goblet, true
	case DistrictShirogane:
		return c.Shirogane, true
	case DistrictEmpyreum:
		return c.Empyreum, true
	default:
		return DistrictNotif{}, false
	}
}

// Store loads and saves the configuration document on the user's behalf.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// FileStore keeps the configuration in a yaml file.
type FileStore struct {
	Path string
}

// Load reads the document, applying defaults to anything missing. A missing
// file yields the defaults without error.
func (fs FileStore) Load() (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(fs.Path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the document, creating parent directories as needed.
func (fs FileStore) Save(cfg Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(fs.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(fs.Path, b, 0o644)
}
