package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

// envBool accepts 1/0, true/false, yes/no and on/off in any case.
func envBool(k string, d bool) bool {
    switch strings.ToLower(os.Getenv(k)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

// envDur accepts Go durations ("500ms", "2m") or a bare number of
// seconds.
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    if secs, err := strconv.Atoi(v); err == nil {
        return time.Duration(secs) * time.Second
    }
    return d
}

// envInt is like envStr but converts the value into an integer, falling
// back to the default when the variable is unset or malformed.
func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}
