package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds resolved CLI configuration.
type Config struct {
	DefaultBackend    string
	Provider          string
	MetadataFile      string
	NativeSimPath     string
	NativeMinMemoryMB int
}

// EnvFlagEnabled returns true when the environment variable exists and is not
// explicitly set to a falsey value ("0/false/no/off").
func EnvFlagEnabled(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return ParseBoolFlag(val, true)
}

func ParseBoolFlag(val string, defaultValue bool) bool {
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

const defaultNativeSimCommand = "qsim-native"

// NativeSimPath returns the native simulator executable: either the path
// set via QBACKEND_NATIVE_SIM_PATH or the default command name, which is
// then looked up on PATH.
func NativeSimPath() string {
	if p := strings.TrimSpace(os.Getenv("QBACKEND_NATIVE_SIM_PATH")); p != "" {
		return p
	}
	return defaultNativeSimCommand
}

// NativeSimPathExplicit reports whether an explicit executable path was
// configured, as opposed to the default PATH lookup.
func NativeSimPathExplicit() bool {
	return strings.TrimSpace(os.Getenv("QBACKEND_NATIVE_SIM_PATH")) != ""
}

const (
	defaultNativeMinMemoryMB = 512
	maxNativeMinMemoryMB     = 1 << 20 // 1TB, anything above is a typo
)

// NativeMinMemoryBytes reads QBACKEND_NATIVE_MIN_MEMORY_MB and returns the
// free-memory headroom the native simulator needs, in bytes. 0 disables
// the memory check. Unparseable values fall back to the default.
func NativeMinMemoryBytes() uint64 {
	raw := strings.TrimSpace(os.Getenv("QBACKEND_NATIVE_MIN_MEMORY_MB"))
	if raw == "" {
		return defaultNativeMinMemoryMB << 20
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return defaultNativeMinMemoryMB << 20
	}
	if value > maxNativeMinMemoryMB {
		value = maxNativeMinMemoryMB
	}
	return uint64(value) << 20
}
