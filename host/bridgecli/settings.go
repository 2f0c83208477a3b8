package main

import (
	"time"

	"github.com/npillmayer/fontbridge/bridge/autocompile"
	"github.com/npillmayer/schuko"
)

// Configuration keys read by the host.
const (
	keyDelay     = "autocompile.delay"
	keyAddr      = "http.addr"
	keyStaticDir = "http.static"
)

const defaultAddr = ":8000"

// Settings are the host's settings, resolved from a configuration.
type Settings struct {
	Delay     time.Duration // auto-compile delay after the last store
	Addr      string        // HTTP listen address
	StaticDir string        // directory served at "/", empty for none
}

// SettingsFrom resolves settings from a configuration. Missing or malformed
// values fall back to defaults.
func SettingsFrom(conf schuko.Configuration) Settings {
	s := Settings{
		Delay:     autocompile.DefaultDelay,
		Addr:      defaultAddr,
		StaticDir: conf.GetString(keyStaticDir),
	}
	if d := conf.GetString(keyDelay); d != "" {
		if delay, err := time.ParseDuration(d); err == nil && delay > 0 {
			s.Delay = delay
		} else {
			tracer().Errorf("ignoring malformed %s = %q", keyDelay, d)
		}
	}
	if addr := conf.GetString(keyAddr); addr != "" {
		s.Addr = addr
	}
	return s
}
