// Package config loads mavgraph settings from a TOML file.
//
// Every field has a default reproducing the report viewer's constants, so
// a config file only needs the keys it changes:
//
//	[canon]
//	excluded_fields = ["Reference", "Latency"]
//	instructions = "never"
//
//	[layout]
//	rank_sep = 40
//
//	[watch]
//	debounce = "250ms"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/layout"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// Config is the complete configuration.
type Config struct {
	Canon  Canon       `toml:"canon"`
	Layout Layout      `toml:"layout"`
	Watch  Watch       `toml:"watch"`
	Cache  CacheConfig `toml:"cache"`
}

// Canon configures canonicalization.
type Canon struct {
	ExcludedFields   []string `toml:"excluded_fields"`
	ReservedChannels []string `toml:"reserved_channels"`
	HiddenDetails    []string `toml:"hidden_details"`
	Instructions     string   `toml:"instructions"` // auto, always or never
}

// Layout configures the layout engine and spacing.
type Layout struct {
	Engine      string  `toml:"engine"`
	NodeSep     float64 `toml:"node_sep"`
	RankSep     float64 `toml:"rank_sep"`
	BankRankSep float64 `toml:"bank_rank_sep"`
	EdgeSep     float64 `toml:"edge_sep"`
}

// Watch configures rebuild-on-change.
type Watch struct {
	Debounce Duration `toml:"debounce"`
}

// CacheConfig configures the layout cache.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"` // defaults to the user cache directory
	TTL      Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("150ms", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	general, bank := layout.DefaultSpacing(false), layout.DefaultSpacing(true)
	return &Config{
		Canon: Canon{
			ExcludedFields:   append([]string(nil), canon.DefaultExcludedFields...),
			ReservedChannels: append([]string(nil), canon.DefaultReservedChannels...),
			HiddenDetails:    append([]string(nil), canon.DefaultHiddenDetails...),
			Instructions:     "auto",
		},
		Layout: Layout{
			Engine:      "dot",
			NodeSep:     general.NodeSep,
			RankSep:     general.RankSep,
			BankRankSep: bank.RankSep,
			EdgeSep:     general.EdgeSep,
		},
		Watch: Watch{Debounce: Duration{150 * time.Millisecond}},
		Cache: CacheConfig{TTL: Duration{7 * 24 * time.Hour}},
	}
}

// Load reads path on top of the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath, falling back to Default when
// there is none.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPath returns $XDG_CONFIG_HOME/mavgraph/config.toml, or the
// platform user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mavgraph", FileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mavgraph", FileName), nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := parsePolicy(c.Canon.Instructions); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"layout.node_sep":      c.Layout.NodeSep,
		"layout.rank_sep":      c.Layout.RankSep,
		"layout.bank_rank_sep": c.Layout.BankRankSep,
		"layout.edge_sep":      c.Layout.EdgeSep,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative", name)
		}
	}
	if c.Watch.Debounce.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	return nil
}

func parsePolicy(s string) (canon.MergePolicy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return canon.MergeAuto, nil
	case "always":
		return canon.MergeAlways, nil
	case "never":
		return canon.MergeNever, nil
	}
	return canon.MergeAuto, errors.New(errors.ErrCodeInvalidConfig, "canon.instructions: unknown policy %q", s)
}

// Options returns canonicalization options for focus.
func (c *Config) Options(focus canon.Focus, logger *log.Logger) canon.Options {
	policy, _ := parsePolicy(c.Canon.Instructions)
	return canon.Options{
		Focus:            focus,
		ExcludedFields:   c.Canon.ExcludedFields,
		ReservedChannels: c.Canon.ReservedChannels,
		HiddenDetails:    c.Canon.HiddenDetails,
		Instructions:     policy,
		Logger:           logger,
	}
}

// Spacing returns layout spacing for a general or bank/port view.
func (c *Config) Spacing(bankPort bool) layout.Spacing {
	sp := layout.DefaultSpacing(bankPort)
	sp.NodeSep, sp.EdgeSep = c.Layout.NodeSep, c.Layout.EdgeSep
	sp.RankSep = c.Layout.RankSep
	if bankPort {
		sp.RankSep = c.Layout.BankRankSep
	}
	return sp
}
