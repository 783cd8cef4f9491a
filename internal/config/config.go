package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ericogr/titan-arena/internal/abilities"
	"github.com/ericogr/titan-arena/internal/game"

	"gopkg.in/yaml.v3"
)

// StatRange bounds a generated stat, both ends inclusive.
type StatRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// StatRanges holds one range per titan stat.
type StatRanges struct {
	HP             StatRange `yaml:"hp"`
	Attack         StatRange `yaml:"attack"`
	Defense        StatRange `yaml:"defense"`
	Speed          StatRange `yaml:"speed"`
	Stamina        StatRange `yaml:"stamina"`
	Accuracy       StatRange `yaml:"accuracy"`
	Evasion        StatRange `yaml:"evasion"`
	CriticalChance StatRange `yaml:"critical_chance"`
}

type rawConfig struct {
	Server struct {
		Address  string `yaml:"address"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Game struct {
		ActionTimeout string `yaml:"action_timeout"`
		ScanInterval  string `yaml:"scan_interval"`
	} `yaml:"game"`
	Titans struct {
		Names        []string    `yaml:"names"`
		MaxAbilities *int        `yaml:"max_abilities"`
		StatRanges   *StatRanges `yaml:"stat_ranges"`
	} `yaml:"titans"`
	Sessions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"sessions"`
}

// LoadedConfig is the validated server configuration.
type LoadedConfig struct {
	ServerAddress string
	LogLevel      string
	DatabasePath  string
	// ActionTimeout is the per-round deadline; zero disables timeouts.
	ActionTimeout time.Duration
	ScanInterval  time.Duration
	TitanNames    []game.TitanName
	MaxAbilities  int
	StatRanges    StatRanges
	SessionTTL    time.Duration
}

// DefaultStatRanges are used when the file does not set stat_ranges.
func DefaultStatRanges() StatRanges {
	return StatRanges{
		HP:             StatRange{Min: 60, Max: 100},
		Attack:         StatRange{Min: 5, Max: 10},
		Defense:        StatRange{Min: 5, Max: 10},
		Speed:          StatRange{Min: 5, Max: 10},
		Stamina:        StatRange{Min: 5, Max: 10},
		Accuracy:       StatRange{Min: 5, Max: 10},
		Evasion:        StatRange{Min: 5, Max: 10},
		CriticalChance: StatRange{Min: 5, Max: 10},
	}
}

// Defaults returns the configuration used when no file is present.
func Defaults() *LoadedConfig {
	return &LoadedConfig{
		ServerAddress: ":8080",
		LogLevel:      "info",
		DatabasePath:  "",
		ActionTimeout: 60 * time.Second,
		ScanInterval:  time.Second,
		TitanNames:    append([]game.TitanName(nil), game.DefaultTitanNames...),
		MaxAbilities:  2,
		StatRanges:    DefaultStatRanges(),
		SessionTTL:    24 * time.Hour,
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file
// yields the defaults; a malformed or invalid one is an error.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML document.
func Parse(b []byte) (*LoadedConfig, error) {
	var rc rawConfig
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg := Defaults()

	if a := strings.TrimSpace(rc.Server.Address); a != "" {
		cfg.ServerAddress = a
	}
	if l := strings.TrimSpace(rc.Server.LogLevel); l != "" {
		cfg.LogLevel = l
	}
	cfg.DatabasePath = strings.TrimSpace(rc.Database.Path)

	if rc.Game.ActionTimeout != "" {
		d, err := time.ParseDuration(rc.Game.ActionTimeout)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid game.action_timeout %q", rc.Game.ActionTimeout)
		}
		cfg.ActionTimeout = d
	}
	if rc.Game.ScanInterval != "" {
		d, err := time.ParseDuration(rc.Game.ScanInterval)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid game.scan_interval %q", rc.Game.ScanInterval)
		}
		cfg.ScanInterval = d
	}
	if rc.Sessions.TTL != "" {
		d, err := time.ParseDuration(rc.Sessions.TTL)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid sessions.ttl %q", rc.Sessions.TTL)
		}
		cfg.SessionTTL = d
	}

	if len(rc.Titans.Names) > 0 {
		seen := make(map[string]struct{}, len(rc.Titans.Names))
		names := make([]game.TitanName, 0, len(rc.Titans.Names))
		for _, n := range rc.Titans.Names {
			n = strings.TrimSpace(n)
			if n == "" {
				return nil, errors.New("titan names must be non-empty")
			}
			k := strings.ToLower(n)
			if _, dup := seen[k]; dup {
				return nil, fmt.Errorf("duplicate titan name: %s", n)
			}
			seen[k] = struct{}{}
			names = append(names, game.TitanName(n))
		}
		cfg.TitanNames = names
	}

	if rc.Titans.MaxAbilities != nil {
		m := *rc.Titans.MaxAbilities
		if m < 0 || m > 2 || m > len(abilities.IDs()) {
			return nil, fmt.Errorf("titans.max_abilities must be between 0 and 2, got %d", m)
		}
		cfg.MaxAbilities = m
	}

	if rc.Titans.StatRanges != nil {
		cfg.StatRanges = *rc.Titans.StatRanges
	}
	if err := cfg.StatRanges.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s StatRanges) validate() error {
	check := func(name string, r StatRange) error {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("invalid stat range for %s: [%d,%d]", name, r.Min, r.Max)
		}
		return nil
	}
	for _, e := range []struct {
		name string
		r    StatRange
	}{
		{"hp", s.HP}, {"attack", s.Attack}, {"defense", s.Defense}, {"speed", s.Speed},
		{"stamina", s.Stamina}, {"accuracy", s.Accuracy}, {"evasion", s.Evasion},
		{"critical_chance", s.CriticalChance},
	} {
		if err := check(e.name, e.r); err != nil {
			return err
		}
	}
	if s.HP.Min < 1 {
		return errors.New("stat range for hp must start at 1 or above")
	}
	return nil
}
