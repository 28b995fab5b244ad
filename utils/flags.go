package utils

import (
	"strconv"
	"strings"

	"github.com/micromdm/go4/env"
)

// EnvPrefix namespaces every environment override
const EnvPrefix = "SWEEP_"

// EnvString returns the SWEEP_<key> environment value or def
func EnvString(key, def string) string {
	return env.String(EnvPrefix+key, def)
}

// EnvBool returns the SWEEP_<key> environment value or def
func EnvBool(key string, def bool) bool {
	return env.Bool(EnvPrefix+key, def)
}

// EnvInt returns the SWEEP_<key> environment value or def when unset or not a number
func EnvInt(key string, def int) int {
	raw := env.String(EnvPrefix+key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// FirstNonEmpty returns the first value that is not blank
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SplitList splits a comma separated flag value, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
