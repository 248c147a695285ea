package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "valid https", url: "https://sig-repo.synopsys.com/bds-integrations-release/com/synopsys/integration/synopsys-bridge"},
		{name: "valid http with port", url: "http://localhost:8081/artifactory"},
		{name: "empty", url: "", wantErr: "bridge_base_url cannot be empty"},
		{name: "no scheme", url: "example.com/bridge", wantErr: "must include a scheme"},
		{name: "no host", url: "https://", wantErr: "must include a host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "bridge_base_url")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseMaxDownloadSize(t *testing.T) {
	size, err := ParseMaxDownloadSize(DefaultMaxDownloadSize)
	require.NoError(t, err)
	assert.Equal(t, int64(1000*1000*1000), size)

	size, err = ParseMaxDownloadSize("250MB")
	require.NoError(t, err)
	assert.Equal(t, int64(250*1000*1000), size)

	_, err = ParseMaxDownloadSize("lots")
	assert.ErrorContains(t, err, "failed to parse max download size")

	_, err = ParseMaxDownloadSize("0")
	assert.ErrorContains(t, err, "must be positive")
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "blank", raw: "   ", want: nil},
		{name: "single", raw: "SAST", want: []string{"SAST"}},
		{name: "comma separated", raw: "SCA, SAST", want: []string{"SCA", "SAST"}},
		{name: "json array", raw: `["CRITICAL","BLOCKER"]`, want: []string{"CRITICAL", "BLOCKER"}},
		{name: "json array with blanks", raw: `["ALL", " ", ""]`, want: []string{"ALL"}},
		{name: "trailing comma", raw: "MAJOR,", want: []string{"MAJOR"}},
		{name: "broken json falls back to split", raw: `["SCA"`, want: []string{`["SCA"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.raw))
		})
	}
}
