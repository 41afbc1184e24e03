package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "STATIC_DIR", "DATA_DIR",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "COUNTRY_MATCH",
	"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID", "MQTT_TOPIC",
}

// clearEnv blanks every variable LoadFromEnv reads so defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if !filepath.IsAbs(got.StaticDir) || filepath.Base(got.StaticDir) != "static" {
		t.Errorf("StaticDir = %q, want absolute path ending in static", got.StaticDir)
	}
	if !filepath.IsAbs(got.DataDir) || filepath.Base(got.DataDir) != "input" {
		t.Errorf("DataDir = %q, want absolute path ending in input", got.DataDir)
	}
	if got.Driver != "sqlite3" || got.Path != ":memory:" || got.DSN != "" {
		t.Errorf("db = (%q, %q, %q), want (sqlite3, :memory:, \"\")", got.Driver, got.Path, got.DSN)
	}
	if got.MaxOpenConns != 1 || got.MaxIdleConns != 1 || got.ConnMaxLifetime != 0 {
		t.Errorf("pool = (%d, %d, %v), want (1, 1, 0s)", got.MaxOpenConns, got.MaxIdleConns, got.ConnMaxLifetime)
	}
	if got.CountryMatch != "exact" {
		t.Errorf("CountryMatch = %q, want exact", got.CountryMatch)
	}
	if got.MQTTEnabled() {
		t.Error("MQTTEnabled() = true, want false without MQTT_BROKER")
	}
	if got.MQTTPort != 1883 || got.MQTTClientID != "climatedash-server" || got.MQTTTopic != "climatedash/selections" {
		t.Errorf("mqtt = (%d, %q, %q)", got.MQTTPort, got.MQTTClientID, got.MQTTTopic)
	}
}

func TestLoadFromEnv_AppEnv_Valid(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		want   string
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "dev with whitespace", appEnv: "  dev  ", want: "dev"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{name: "staging env", key: "APP_ENV", value: "staging", wantMsg: "APP_ENV"},
		{name: "uppercase env", key: "APP_ENV", value: "DEV", wantMsg: "APP_ENV"},
		{name: "log level", key: "LOG_LEVEL", value: "loud", wantMsg: "LOG_LEVEL"},
		{name: "max open conns", key: "DB_MAX_OPEN_CONNS", value: "many", wantMsg: "DB_MAX_OPEN_CONNS"},
		{name: "max idle conns", key: "DB_MAX_IDLE_CONNS", value: "1.5", wantMsg: "DB_MAX_IDLE_CONNS"},
		{name: "lifetime", key: "DB_CONN_MAX_LIFETIME", value: "forever", wantMsg: "DB_CONN_MAX_LIFETIME"},
		{name: "country match", key: "COUNTRY_MATCH", value: "soundex", wantMsg: "COUNTRY_MATCH"},
		{name: "mqtt port", key: "MQTT_PORT", value: "mqtt", wantMsg: "MQTT_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %s", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("HTTP_ADDR", "  127.0.0.1:8081 ")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("COUNTRY_MATCH", " Fuzzy ")
	t.Setenv("MQTT_BROKER", "broker.local")
	t.Setenv("MQTT_PORT", "1884")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.HTTPAddr != "127.0.0.1:8081" {
		t.Errorf("HTTPAddr = %q", got.HTTPAddr)
	}
	if got.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", got.DataDir, dir)
	}
	if got.ConnMaxLifetime != 90*time.Second {
		t.Errorf("ConnMaxLifetime = %v", got.ConnMaxLifetime)
	}
	if got.CountryMatch != "fuzzy" {
		t.Errorf("CountryMatch = %q, want fuzzy", got.CountryMatch)
	}
	if !got.MQTTEnabled() || got.MQTTPort != 1884 {
		t.Errorf("mqtt = (%v, %d)", got.MQTTEnabled(), got.MQTTPort)
	}
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		got, err := parseLogLevel(in)
		if err == nil {
			t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
		}
		if got != slog.LevelInfo {
			t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
		}
	}
}
