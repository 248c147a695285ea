// Package config captures the job inputs bridgerun operates on.
// Inputs are read once at process start and passed around by value afterwards.
package config

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Input keys, named the way the CI action declares them.
const (
	PolarisServerURLKey       = "polaris_serverUrl"
	PolarisAccessTokenKey     = "polaris_accessToken"
	PolarisApplicationNameKey = "polaris_application_name"
	PolarisProjectNameKey     = "polaris_project_name"
	PolarisAssessmentTypesKey = "polaris_assessment_types"

	BlackDuckURLKey                   = "blackduck_url"
	BlackDuckAPITokenKey              = "blackduck_apiToken"
	BlackDuckInstallDirectoryKey      = "blackduck_install_directory"
	BlackDuckScanFullKey              = "blackduck_scan_full"
	BlackDuckScanFailureSeveritiesKey = "blackduck_scan_failure_severities"

	CoverityURLKey              = "coverity_url"
	CoverityUserKey             = "coverity_user"
	CoverityPassphraseKey       = "coverity_passphrase"
	CoverityProjectNameKey      = "coverity_project_name"
	CoverityStreamNameKey       = "coverity_stream_name"
	CoverityInstallDirectoryKey = "coverity_install_directory"
	CoverityPolicyViewKey       = "coverity_policy_view"
	CoverityRepositoryNameKey   = "coverity_repository_name"
	CoverityBranchNameKey       = "coverity_branch_name"

	BridgeDownloadURLKey     = "bridge_download_url"
	BridgeDownloadVersionKey = "bridge_download_version"
	BridgeBaseURLKey         = "bridge_base_url"
	BridgeInstallPathKey     = "synopsys_bridge_path"
	IncludeDiagnosticsKey    = "include_diagnostics"
	WorkspaceKey             = "workspace"
)

// AllKeys lists every input bridgerun understands.
var AllKeys = []string{
	PolarisServerURLKey, PolarisAccessTokenKey, PolarisApplicationNameKey, PolarisProjectNameKey, PolarisAssessmentTypesKey,
	BlackDuckURLKey, BlackDuckAPITokenKey, BlackDuckInstallDirectoryKey, BlackDuckScanFullKey, BlackDuckScanFailureSeveritiesKey,
	CoverityURLKey, CoverityUserKey, CoverityPassphraseKey, CoverityProjectNameKey, CoverityStreamNameKey,
	CoverityInstallDirectoryKey, CoverityPolicyViewKey, CoverityRepositoryNameKey, CoverityBranchNameKey,
	BridgeDownloadURLKey, BridgeDownloadVersionKey, BridgeBaseURLKey, BridgeInstallPathKey, IncludeDiagnosticsKey, WorkspaceKey,
}

// IsKnownKey reports whether key is one of AllKeys.
func IsKnownKey(key string) bool {
	return slices.Contains(AllKeys, key)
}

// Inputs is an immutable snapshot of raw job inputs.
type Inputs struct {
	values map[string]string
}

// NewInputs copies values into a new snapshot. Unknown keys are kept; lookups just never ask for them.
func NewInputs(values map[string]string) Inputs {
	return Inputs{values: maps.Clone(values)}
}

// With returns a copy of in with key set to value.
func (in Inputs) With(key, value string) Inputs {
	values := maps.Clone(in.values)
	if values == nil {
		values = map[string]string{}
	}
	values[key] = value
	return Inputs{values: values}
}

// Lookup returns the raw value and whether it was supplied at all. CI runners export
// undeclared inputs as empty strings, so an empty value counts as not supplied.
func (in Inputs) Lookup(key string) (string, bool) {
	v, ok := in.values[key]
	return v, ok && v != ""
}

// Get returns the trimmed value of key.
func (in Inputs) Get(key string) string {
	return strings.TrimSpace(in.values[key])
}

// IsSet reports whether key carries a non-blank value.
func (in Inputs) IsSet(key string) bool {
	return in.Get(key) != ""
}

// Bool parses key as a boolean. Unset or unparsable values are false.
func (in Inputs) Bool(key string) bool {
	b, err := strconv.ParseBool(in.Get(key))
	return err == nil && b
}

// List parses a list-valued key, see ParseList.
func (in Inputs) List(key string) []string {
	return ParseList(in.Get(key))
}

// Keys returns the supplied keys in sorted order.
func (in Inputs) Keys() []string {
	keys := make([]string, 0, len(in.values))
	for k, v := range in.values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
