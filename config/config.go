// Package config exposes the runtime configuration of oplog. Values come from
// OPLOG_* environment variables, optionally seeded from a .env file.
package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const (
	defaultPort            = 8080
	defaultSessionMaxAge   = 60
	defaultTutorPassphrase = "tutor01"
	defaultMasterUsername  = "admin"
	defaultMasterPassword  = "admin"
	defaultLang            = "de-DE"
)

// LoadEnv reads .env files into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("OPLOG_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("OPLOG_DEBUG") == "true"
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("OPLOG_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("OPLOG_LISTEN")
}

func GetPort() int {
	return getInt("OPLOG_PORT", defaultPort)
}

// GetSecret returns the session signing secret. An empty value means the
// server generates a random one per process.
func GetSecret() string {
	return os.Getenv("OPLOG_SECRET")
}

// GetSessionMaxAge returns the session lifetime in minutes.
func GetSessionMaxAge() int {
	return getInt("OPLOG_SESSION_MAX_AGE", defaultSessionMaxAge)
}

// GetTutorPassphrase returns the shared tutor passphrase. Setting
// OPLOG_TUTOR_PASSPHRASE to "-" disables tutor mode.
func GetTutorPassphrase() string {
	v, ok := os.LookupEnv("OPLOG_TUTOR_PASSPHRASE")
	if !ok || v == "" {
		return defaultTutorPassphrase
	}
	if v == "-" {
		return ""
	}
	return v
}

func GetMasterUsername() string {
	return getString("OPLOG_MASTER_USERNAME", defaultMasterUsername)
}

func GetMasterPassword() string {
	return getString("OPLOG_MASTER_PASSWORD", defaultMasterPassword)
}

// GetMasterTOTP returns the base32 TOTP secret required for master logins,
// or "" when two-factor is off.
func GetMasterTOTP() string {
	return os.Getenv("OPLOG_MASTER_TOTP")
}

// GetLang returns the fallback language for user-facing messages.
func GetLang() string {
	return getString("OPLOG_LANG", defaultLang)
}

// GetDomain returns the only Host the server answers, "" for any.
func GetDomain() string {
	return os.Getenv("OPLOG_DOMAIN")
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
