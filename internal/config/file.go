package config

import (
	"maps"
	"strings"
)

// ScoreTypeConfig holds listing overrides for one score type.
type ScoreTypeConfig struct {
	// BaseURL overrides the listing host, e.g. for a mirror.
	BaseURL string `yaml:"baseURL,omitempty"`

	// PageSize overrides the option chosen in the page-size select.
	PageSize string `yaml:"pageSize,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is sent as the raw Cookie header.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the page limit. 0 keeps the global value.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// File represents the structure of the .atlasharvest configuration file.
type File struct {
	// Defaults applies to every score type unless overridden.
	Defaults ScoreTypeConfig `yaml:"defaults,omitempty"`

	// ScoreTypes maps score type names (say, ea, soz, dil, tyt) to their
	// overrides.
	ScoreTypes map[string]ScoreTypeConfig `yaml:"scoreTypes,omitempty"`
}

// ScoreTypeConfig returns the configuration for a score type: the
// defaults with the non-empty fields of the score type section on top.
// Headers are merged key by key. Names are case-insensitive.
func (f *File) ScoreTypeConfig(name string) ScoreTypeConfig {
	result := f.Defaults
	result.Headers = maps.Clone(f.Defaults.Headers)

	sc, ok := f.ScoreTypes[strings.ToLower(name)]
	if !ok {
		return result
	}

	if sc.BaseURL != "" {
		result.BaseURL = sc.BaseURL
	}
	if sc.PageSize != "" {
		result.PageSize = sc.PageSize
	}
	if sc.UserAgent != "" {
		result.UserAgent = sc.UserAgent
	}
	if sc.Cookie != "" {
		result.Cookie = sc.Cookie
	}
	if sc.MaxPages != 0 {
		result.MaxPages = sc.MaxPages
	}
	if len(sc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(sc.Headers))
		}
		maps.Copy(result.Headers, sc.Headers)
	}

	return result
}
