package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/CompassSecurity/bridgerun/pkg/format"
	"github.com/tidwall/gjson"
)

// DefaultMaxDownloadSize caps the bridge archive download.
const DefaultMaxDownloadSize = "1GB"

// ValidateURL validates that a string is a valid URL.
func ValidateURL(urlStr string, fieldName string) error {
	if urlStr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", fieldName, err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("%s must include a scheme (http/https)", fieldName)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}

	return nil
}

// ParseMaxDownloadSize parses a human-readable size string (e.g., "500MB", "1GB") into bytes.
func ParseMaxDownloadSize(sizeStr string) (int64, error) {
	size, err := format.ParseHumanSize(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse max download size: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("max download size must be positive, got %q", sizeStr)
	}
	return size, nil
}

// ParseList splits a list input. Accepts a JSON array (["SCA","SAST"]) or a comma separated string.
// Blank entries are dropped.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []string
	if strings.HasPrefix(raw, "[") && gjson.Valid(raw) {
		parsed := gjson.Parse(raw)
		if parsed.IsArray() {
			for _, item := range parsed.Array() {
				if v := strings.TrimSpace(item.String()); v != "" {
					out = append(out, v)
				}
			}
			return out
		}
	}

	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
