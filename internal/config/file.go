package config

import (
	"slices"
	"time"
)

// WikiConfig describes one wiki that publishes Citron/Spam reports.
type WikiConfig struct {
	// ServerName is the wiki host, e.g. "vi.wikipedia.org".
	ServerName string `yaml:"serverName,omitempty"`

	// ReportPrefix overrides the report page title prefix.
	ReportPrefix string `yaml:"reportPrefix,omitempty"`

	// Language of the interface messages.
	Language string `yaml:"language,omitempty"`

	// Skin decides where the launcher link goes.
	Skin string `yaml:"skin,omitempty"`
}

// Defaults are applied to every wiki unless overridden.
type Defaults struct {
	WikiConfig `yaml:",inline"`

	UserAgent string        `yaml:"userAgent,omitempty"`
	Proxy     string        `yaml:"proxy,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Bot holds bot password credentials.
type Bot struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// File is the structure of the .citronspam configuration file.
type File struct {
	Bot      Bot                   `yaml:"bot,omitempty"`
	Defaults Defaults              `yaml:"defaults,omitempty"`
	Wikis    map[string]WikiConfig `yaml:"wikis,omitempty"`
}

// WikiConfig returns w merged over the file defaults.
func (f *File) WikiConfig(id string, w WikiConfig) WikiConfig {
	result := f.Defaults.WikiConfig
	if w.ServerName != "" {
		result.ServerName = w.ServerName
	}
	if w.ReportPrefix != "" {
		result.ReportPrefix = w.ReportPrefix
	}
	if w.Language != "" {
		result.Language = w.Language
	}
	if w.Skin != "" {
		result.Skin = w.Skin
	}
	if result.ServerName == "" {
		result.ServerName = id
	}
	return result
}

// Wiki returns the merged configuration of the wiki with the given ID.
func (f *File) Wiki(id string) (WikiConfig, bool) {
	w, ok := f.Wikis[id]
	if !ok {
		return WikiConfig{}, false
	}
	return f.WikiConfig(id, w), true
}

// WikiIDs returns the configured wiki IDs in sorted order.
func (f *File) WikiIDs() []string {
	ids := make([]string, 0, len(f.Wikis))
	for id := range f.Wikis {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
