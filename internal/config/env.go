package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
		*dst = n
	}
}

func defaultString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// duration parses a validated duration field. Invalid input yields zero.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// checkDurations reports the first field whose value does not parse.
func checkDurations(fields ...[2]string) error {
	for _, f := range fields {
		if _, err := time.ParseDuration(f[1]); err != nil {
			return fmt.Errorf("invalid %s: %w", f[0], err)
		}
	}
	return nil
}
