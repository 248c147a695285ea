// Package format holds small formatting and filesystem helpers shared by the bridge packages.
package format

import (
	gounits "github.com/docker/go-units"
)

// ParseHumanSize parses a human-readable size string (e.g., "500MB", "1GB") into bytes
func ParseHumanSize(size string) (int64, error) {
	return gounits.FromHumanSize(size)
}

// HumanSize renders a byte count the way go-units does, e.g. "12.3MB"
func HumanSize(bytes int64) string {
	return gounits.HumanSize(float64(bytes))
}
