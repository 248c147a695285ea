package scan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/CompassSecurity/bridgerun/pkg/config"
	"github.com/CompassSecurity/bridgerun/pkg/format"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FailureSeverities accepted for blackduck_scan_failure_severities.
var FailureSeverities = []string{"ALL", "NONE", "BLOCKER", "CRITICAL", "MAJOR", "MINOR", "OK", "TRIVIAL", "UNSPECIFIED"}

// AssessmentTypes accepted for polaris_assessment_types.
var AssessmentTypes = []string{"SCA", "SAST"}

var title = cases.Title(language.English)

// DetermineScanType selects the backend whose primary URL is set, validates its inputs
// and returns the typed configuration. Fields of other backends are ignored.
func DetermineScanType(in config.Inputs) (Configuration, error) {
	var selected []Backend
	var names []string
	for _, p := range primaryKeys {
		names = append(names, p.key)
		if in.IsSet(p.key) {
			selected = append(selected, p.backend)
		}
	}

	switch len(selected) {
	case 0:
		return nil, &ConfigurationError{Message: fmt.Sprintf("Requires at least one scan type: (%s)", strings.Join(names, ","))}
	case 1:
	default:
		return nil, &ConfigurationError{Message: fmt.Sprintf("Requires only one scan type: (%s)", strings.Join(names, ","))}
	}

	backend := selected[0]
	log.Debug().Str("backend", string(backend)).Msg("Selected scan backend")

	switch backend {
	case BackendPolaris:
		if _, err := ValidatePolarisInputs(in); err != nil {
			return nil, err
		}
		return Polaris{
			ServerURL:       in.Get(config.PolarisServerURLKey),
			AccessToken:     in.Get(config.PolarisAccessTokenKey),
			ApplicationName: in.Get(config.PolarisApplicationNameKey),
			ProjectName:     in.Get(config.PolarisProjectNameKey),
			AssessmentTypes: in.List(config.PolarisAssessmentTypesKey),
		}, nil

	case BackendBlackDuck:
		if _, err := ValidateBlackDuckInputs(in); err != nil {
			return nil, err
		}
		cfg := BlackDuck{
			URL:               in.Get(config.BlackDuckURLKey),
			APIToken:          in.Get(config.BlackDuckAPITokenKey),
			InstallDirectory:  in.Get(config.BlackDuckInstallDirectoryKey),
			ScanFull:          in.Bool(config.BlackDuckScanFullKey),
			FailureSeverities: in.List(config.BlackDuckScanFailureSeveritiesKey),
		}
		if cfg.InstallDirectory != "" {
			if err := ValidateInstallDirectoryParam(cfg.InstallDirectory, BackendBlackDuck); err != nil {
				return nil, err
			}
		}
		return cfg, nil

	default:
		if _, err := ValidateCoverityInputs(in); err != nil {
			return nil, err
		}
		cfg := Coverity{
			URL:              in.Get(config.CoverityURLKey),
			User:             in.Get(config.CoverityUserKey),
			Passphrase:       in.Get(config.CoverityPassphraseKey),
			ProjectName:      in.Get(config.CoverityProjectNameKey),
			StreamName:       in.Get(config.CoverityStreamNameKey),
			InstallDirectory: in.Get(config.CoverityInstallDirectoryKey),
			PolicyView:       in.Get(config.CoverityPolicyViewKey),
			RepositoryName:   in.Get(config.CoverityRepositoryNameKey),
			BranchName:       in.Get(config.CoverityBranchNameKey),
		}
		if cfg.InstallDirectory != "" {
			if err := ValidateInstallDirectoryParam(cfg.InstallDirectory, BackendCoverity); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	}
}

// ValidatePolarisInputs checks the required Polaris inputs and the assessment types.
func ValidatePolarisInputs(in config.Inputs) (bool, error) {
	if err := validateRequired(BackendPolaris, in); err != nil {
		return false, err
	}
	if err := validateEnumList(BackendPolaris, config.PolarisAssessmentTypesKey, in.List(config.PolarisAssessmentTypesKey), AssessmentTypes); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateBlackDuckInputs checks the required Black Duck inputs and, when set, the failure severities.
func ValidateBlackDuckInputs(in config.Inputs) (bool, error) {
	if err := validateRequired(BackendBlackDuck, in); err != nil {
		return false, err
	}
	if in.IsSet(config.BlackDuckScanFailureSeveritiesKey) {
		if err := validateEnumList(BackendBlackDuck, config.BlackDuckScanFailureSeveritiesKey, in.List(config.BlackDuckScanFailureSeveritiesKey), FailureSeverities); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ValidateCoverityInputs checks the required Coverity inputs.
func ValidateCoverityInputs(in config.Inputs) (bool, error) {
	if err := validateRequired(BackendCoverity, in); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateInstallDirectoryParam checks that an install directory was given and exists.
func ValidateInstallDirectoryParam(path string, backend Backend) error {
	key := installDirectoryKey(backend)
	if strings.TrimSpace(path) == "" {
		return &ValidationError{
			Backend: backend,
			Fields:  []string{key},
			Message: fmt.Sprintf("%s parameter for %s is missing", key, title.String(string(backend))),
		}
	}
	if !format.PathExists(path) {
		return &ValidationError{
			Backend: backend,
			Fields:  []string{key},
			Message: fmt.Sprintf("%s parameter for %s is invalid", key, title.String(string(backend))),
		}
	}
	return nil
}

// ValidateFailureSeverities checks a Black Duck failure severity list.
func ValidateFailureSeverities(severities []string) error {
	return validateEnumList(BackendBlackDuck, config.BlackDuckScanFailureSeveritiesKey, severities, FailureSeverities)
}

func validateRequired(backend Backend, in config.Inputs) error {
	missing := MissingFields(backend, in)
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{
		Backend: backend,
		Fields:  missing,
		Message: fmt.Sprintf("[%s] - required parameters for %s is missing", strings.Join(missing, ","), backend),
	}
}

// validateEnumList rejects empty lists and values outside allowed. Matching is case-insensitive.
func validateEnumList(backend Backend, key string, values []string, allowed []string) error {
	valid := len(values) > 0
	for _, v := range values {
		if !slices.Contains(allowed, strings.ToUpper(v)) {
			valid = false
			break
		}
	}
	if valid {
		return nil
	}
	return &ValidationError{
		Backend: backend,
		Fields:  []string{key},
		Message: "Provided value is not valid - " + strings.ToUpper(key),
	}
}

func installDirectoryKey(backend Backend) string {
	switch backend {
	case BackendBlackDuck:
		return config.BlackDuckInstallDirectoryKey
	case BackendCoverity:
		return config.CoverityInstallDirectoryKey
	}
	return string(backend) + "_install_directory"
}
