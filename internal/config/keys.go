package config

import (
	"os"
	"strings"
)

// SettingSource says where an identity setting came from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus describes one identity setting for display.
type SettingStatus struct {
	Name   string        `json:"name"`
	Source SettingSource `json:"source"`
	Masked string        `json:"masked,omitempty"`
}

// defaultUserAgent mirrors the sec.user_agent default.
const defaultUserAgent = "findata/1.0 findata@example.com"

// CheckSettings reports the identity settings upstreams see. EDGAR throttles
// the shared default User-Agent, so callers should warn on SourceDefault.
func CheckSettings(cfg *Config) []SettingStatus {
	return []SettingStatus{
		checkSetting("SEC User-Agent", cfg.SEC.UserAgent, defaultUserAgent, EnvPrefix+"_SEC_USER_AGENT"),
	}
}

func checkSetting(name, value, def, envVar string) SettingStatus {
	s := SettingStatus{Name: name, Masked: maskContact(value)}
	switch {
	case os.Getenv(envVar) != "":
		s.Source = SourceEnv
	case value == def:
		s.Source = SourceDefault
	default:
		s.Source = SourceConfig
	}
	return s
}

// maskContact hides the mailbox of any e-mail address in v, keeping the
// first character and the domain.
func maskContact(v string) string {
	fields := strings.Fields(v)
	for i, f := range fields {
		at := strings.IndexByte(f, '@')
		if at <= 0 {
			continue
		}
		fields[i] = f[:1] + "***" + f[at:]
	}
	return strings.Join(fields, " ")
}
