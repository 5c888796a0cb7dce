package common

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// LoggerFromFlags builds the shared JSON logger; --quiet drops everything
// below error.
func LoggerFromFlags(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// FilterFields reduces a struct to the requested subset of its JSON
// fields. An empty fieldsStr keeps everything.
func FilterFields(v interface{}, fieldsStr string) map[string]interface{} {
	full := structToMap(v)
	if fieldsStr == "" {
		return full
	}

	include := make(map[string]bool)
	for _, f := range strings.Split(fieldsStr, ",") {
		include[strings.TrimSpace(f)] = true
	}

	filtered := make(map[string]interface{})
	for k, val := range full {
		if include[k] {
			filtered[k] = val
		}
	}
	return filtered
}

// structToMap converts a struct to a map via its JSON tags.
func structToMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
