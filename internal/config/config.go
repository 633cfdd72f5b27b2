package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "studyplan.db"
	DefaultJSONName       = "tasks.json"
	DefaultLogName        = "studyplan.log"
	EnvConfigPath         = "STUDYPLAN_CONFIG"
	appDir                = "studyplan"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	Edit        string `toml:"edit"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	SwitchView  string `toml:"switch_view"`
	Search      string `toml:"search"`
	Subject     string `toml:"subject"`
	CycleStatus string `toml:"cycle_status"`
	CycleSort   string `toml:"cycle_sort"`
	PrevWeek    string `toml:"prev_week"`
	NextWeek    string `toml:"next_week"`
	ThisWeek    string `toml:"this_week"`
	Reminders   string `toml:"reminders"`
}

type Reminders struct {
	Enabled     bool `toml:"enabled"`
	LeadMinutes int  `toml:"lead_minutes"`
}

type Config struct {
	Storage       string    `toml:"storage"`
	DBPath        string    `toml:"db_path"`
	JSONPath      string    `toml:"json_path"`
	LogFile       string    `toml:"log_file"`
	DefaultStatus string    `toml:"default_status"`
	DefaultSort   string    `toml:"default_sort"`
	Reminders     Reminders `toml:"reminders"`
	Keys          Keymap    `toml:"keys"`
}

// ReminderLead is the configured lead time, falling back to 30 minutes.
func (c Config) ReminderLead() time.Duration {
	if c.Reminders.LeadMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Reminders.LeadMinutes) * time.Minute
}

// ResolveConfigPath prefers $STUDYPLAN_CONFIG, then the user config dir,
// then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDir, DefaultConfigFileName)
}

// LoadOrCreate reads path, writing the defaults there first if it does not
// exist. Relative data paths are resolved against the config's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.JSONPath == "" {
		cfg.JSONPath = DefaultJSONName
	}
	cfg.Keys = cfg.Keys.withDefaults()
	return cfg.resolve(filepath.Dir(path)), nil
}

func (c Config) resolve(base string) Config {
	c.DBPath = under(base, c.DBPath)
	c.JSONPath = under(base, c.JSONPath)
	if c.LogFile != "" {
		c.LogFile = under(base, c.LogFile)
	}
	return c
}

func under(base, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(base, p)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// withDefaults fills keys left blank in a hand-edited config.
func (k Keymap) withDefaults() Keymap {
	d := defaultKeys()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&k.Quit, d.Quit)
	fill(&k.Add, d.Add)
	fill(&k.Edit, d.Edit)
	fill(&k.Up, d.Up)
	fill(&k.Down, d.Down)
	fill(&k.Toggle, d.Toggle)
	fill(&k.Delete, d.Delete)
	fill(&k.Confirm, d.Confirm)
	fill(&k.Cancel, d.Cancel)
	fill(&k.SwitchView, d.SwitchView)
	fill(&k.Search, d.Search)
	fill(&k.Subject, d.Subject)
	fill(&k.CycleStatus, d.CycleStatus)
	fill(&k.CycleSort, d.CycleSort)
	fill(&k.PrevWeek, d.PrevWeek)
	fill(&k.NextWeek, d.NextWeek)
	fill(&k.ThisWeek, d.ThisWeek)
	fill(&k.Reminders, d.Reminders)
	return k
}

func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Storage:       "sqlite",
		DBPath:        DefaultDBName,
		JSONPath:      DefaultJSONName,
		LogFile:       DefaultLogName,
		DefaultStatus: "all",
		DefaultSort:   "dueAsc",
		Reminders: Reminders{
			Enabled:     true,
			LeadMinutes: 30,
		},
		Keys: defaultKeys(),
	}
}

func defaultKeys() Keymap {
	return Keymap{
		Quit:        "q",
		Add:         "a",
		Edit:        "e",
		Up:          "k",
		Down:        "j",
		Toggle:      " ",
		Delete:      "d",
		Confirm:     "enter",
		Cancel:      "esc",
		SwitchView:  "tab",
		Search:      "/",
		Subject:     "s",
		CycleStatus: "f",
		CycleSort:   "o",
		PrevWeek:    "[",
		NextWeek:    "]",
		ThisWeek:    "t",
		Reminders:   "n",
	}
}
