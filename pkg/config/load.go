package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/perimeterx/marshmallow"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix CI runners use when exporting action inputs, e.g. INPUT_BLACKDUCK_URL.
const EnvPrefix = "INPUT_"

// LoadOptions controls where Load looks for inputs. Later sources win:
// config file, then environment, then overrides.
type LoadOptions struct {
	ConfigFile string
	Environ    []string
	Overrides  map[string]string
}

// fileInputs is the typed shape of a config file. Lists and booleans get real types there,
// they are flattened back to strings for Inputs.
type fileInputs struct {
	PolarisServerURL       string   `json:"polaris_serverUrl" yaml:"polaris_serverUrl"`
	PolarisAccessToken     string   `json:"polaris_accessToken" yaml:"polaris_accessToken"`
	PolarisApplicationName string   `json:"polaris_application_name" yaml:"polaris_application_name"`
	PolarisProjectName     string   `json:"polaris_project_name" yaml:"polaris_project_name"`
	PolarisAssessmentTypes []string `json:"polaris_assessment_types" yaml:"polaris_assessment_types"`

	BlackDuckURL                   string   `json:"blackduck_url" yaml:"blackduck_url"`
	BlackDuckAPIToken              string   `json:"blackduck_apiToken" yaml:"blackduck_apiToken"`
	BlackDuckInstallDirectory      string   `json:"blackduck_install_directory" yaml:"blackduck_install_directory"`
	BlackDuckScanFull              *bool    `json:"blackduck_scan_full" yaml:"blackduck_scan_full"`
	BlackDuckScanFailureSeverities []string `json:"blackduck_scan_failure_severities" yaml:"blackduck_scan_failure_severities"`

	CoverityURL              string `json:"coverity_url" yaml:"coverity_url"`
	CoverityUser             string `json:"coverity_user" yaml:"coverity_user"`
	CoverityPassphrase       string `json:"coverity_passphrase" yaml:"coverity_passphrase"`
	CoverityProjectName      string `json:"coverity_project_name" yaml:"coverity_project_name"`
	CoverityStreamName       string `json:"coverity_stream_name" yaml:"coverity_stream_name"`
	CoverityInstallDirectory string `json:"coverity_install_directory" yaml:"coverity_install_directory"`
	CoverityPolicyView       string `json:"coverity_policy_view" yaml:"coverity_policy_view"`
	CoverityRepositoryName   string `json:"coverity_repository_name" yaml:"coverity_repository_name"`
	CoverityBranchName       string `json:"coverity_branch_name" yaml:"coverity_branch_name"`

	BridgeDownloadURL     string `json:"bridge_download_url" yaml:"bridge_download_url"`
	BridgeDownloadVersion string `json:"bridge_download_version" yaml:"bridge_download_version"`
	BridgeBaseURL         string `json:"bridge_base_url" yaml:"bridge_base_url"`
	BridgeInstallPath     string `json:"synopsys_bridge_path" yaml:"synopsys_bridge_path"`
	IncludeDiagnostics    *bool  `json:"include_diagnostics" yaml:"include_diagnostics"`
	Workspace             string `json:"workspace" yaml:"workspace"`
}

func (f fileInputs) values() map[string]string {
	values := map[string]string{
		PolarisServerURLKey:       f.PolarisServerURL,
		PolarisAccessTokenKey:     f.PolarisAccessToken,
		PolarisApplicationNameKey: f.PolarisApplicationName,
		PolarisProjectNameKey:     f.PolarisProjectName,
		PolarisAssessmentTypesKey: strings.Join(f.PolarisAssessmentTypes, ","),

		BlackDuckURLKey:                   f.BlackDuckURL,
		BlackDuckAPITokenKey:              f.BlackDuckAPIToken,
		BlackDuckInstallDirectoryKey:      f.BlackDuckInstallDirectory,
		BlackDuckScanFailureSeveritiesKey: strings.Join(f.BlackDuckScanFailureSeverities, ","),

		CoverityURLKey:              f.CoverityURL,
		CoverityUserKey:             f.CoverityUser,
		CoverityPassphraseKey:       f.CoverityPassphrase,
		CoverityProjectNameKey:      f.CoverityProjectName,
		CoverityStreamNameKey:       f.CoverityStreamName,
		CoverityInstallDirectoryKey: f.CoverityInstallDirectory,
		CoverityPolicyViewKey:       f.CoverityPolicyView,
		CoverityRepositoryNameKey:   f.CoverityRepositoryName,
		CoverityBranchNameKey:       f.CoverityBranchName,

		BridgeDownloadURLKey:     f.BridgeDownloadURL,
		BridgeDownloadVersionKey: f.BridgeDownloadVersion,
		BridgeBaseURLKey:         f.BridgeBaseURL,
		BridgeInstallPathKey:     f.BridgeInstallPath,
		WorkspaceKey:             f.Workspace,
	}
	if f.BlackDuckScanFull != nil {
		values[BlackDuckScanFullKey] = strconv.FormatBool(*f.BlackDuckScanFull)
	}
	if f.IncludeDiagnostics != nil {
		values[IncludeDiagnosticsKey] = strconv.FormatBool(*f.IncludeDiagnostics)
	}
	return values
}

// Load assembles Inputs from the configured sources.
func Load(opts LoadOptions) (Inputs, error) {
	values := map[string]string{}

	if opts.ConfigFile != "" {
		fromFile, err := ReadConfigFile(opts.ConfigFile)
		if err != nil {
			return Inputs{}, err
		}
		mergeNonEmpty(values, fromFile)
	}

	mergeNonEmpty(values, FromEnviron(opts.Environ))
	mergeNonEmpty(values, opts.Overrides)

	return NewInputs(values), nil
}

// FromEnviron extracts known inputs from KEY=VALUE pairs. The variable name is the
// upper-cased input key with the INPUT_ prefix.
func FromEnviron(environ []string) map[string]string {
	values := map[string]string{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		for _, key := range AllKeys {
			if name == EnvName(key) {
				values[key] = value
			}
		}
	}
	return values
}

// EnvName returns the environment variable carrying key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, " ", "_"))
}

// ReadConfigFile parses a YAML or JSON config file. Unknown keys are logged and ignored.
func ReadConfigFile(path string) (map[string]string, error) {
	// #nosec G304 - config file path is supplied by the job owner via --config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed reading config file: %w", err)
	}

	var parsed fileInputs
	var unknown []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		rest, err := marshmallow.Unmarshal(data, &parsed, marshmallow.WithExcludeKnownFieldsFromMap(true))
		if err != nil {
			return nil, fmt.Errorf("failed parsing JSON config file %s: %w", path, err)
		}
		for k := range rest {
			unknown = append(unknown, k)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed parsing YAML config file %s: %w", path, err)
		}
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed parsing YAML config file %s: %w", path, err)
		}
		for k := range raw {
			if !IsKnownKey(k) {
				unknown = append(unknown, k)
			}
		}
	default:
		return nil, errors.New("unsupported config file extension, use .json, .yml or .yaml")
	}

	slices.Sort(unknown)
	for _, k := range unknown {
		log.Warn().Str("file", path).Str("key", k).Msg("Ignoring unknown config key")
	}

	return parsed.values(), nil
}

func mergeNonEmpty(dst map[string]string, src map[string]string) {
	for k, v := range src {
		if v != "" {
			dst[k] = v
		}
	}
}
