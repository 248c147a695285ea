package scan

import "github.com/CompassSecurity/bridgerun/pkg/config"

// FieldRequirement lists the input keys a backend needs and the ones it can take.
// Required is ordered; missing keys are reported in that order.
type FieldRequirement struct {
	Required []string
	Optional []string
}

// Requirements is fixed per backend. The primary URL is not listed in Required
// because its presence is what selects the backend.
var Requirements = map[Backend]FieldRequirement{
	BackendPolaris: {
		Required: []string{
			config.PolarisAccessTokenKey,
			config.PolarisApplicationNameKey,
			config.PolarisProjectNameKey,
			config.PolarisAssessmentTypesKey,
		},
	},
	BackendBlackDuck: {
		Required: []string{
			config.BlackDuckAPITokenKey,
			config.BlackDuckScanFullKey,
		},
		Optional: []string{
			config.BlackDuckInstallDirectoryKey,
			config.BlackDuckScanFailureSeveritiesKey,
		},
	},
	BackendCoverity: {
		Required: []string{
			config.CoverityUserKey,
			config.CoverityPassphraseKey,
			config.CoverityProjectNameKey,
			config.CoverityStreamNameKey,
		},
		Optional: []string{
			config.CoverityInstallDirectoryKey,
			config.CoverityPolicyViewKey,
			config.CoverityRepositoryNameKey,
			config.CoverityBranchNameKey,
		},
	},
}

// primaryKeys in the order they are reported when no backend is configured.
var primaryKeys = []struct {
	key     string
	backend Backend
}{
	{config.PolarisServerURLKey, BackendPolaris},
	{config.CoverityURLKey, BackendCoverity},
	{config.BlackDuckURLKey, BackendBlackDuck},
}

// PrimaryKey returns the input key whose presence selects backend.
func PrimaryKey(backend Backend) string {
	for _, p := range primaryKeys {
		if p.backend == backend {
			return p.key
		}
	}
	return ""
}

// MissingFields returns the required keys of backend that are not set in in, in required order.
func MissingFields(backend Backend, in config.Inputs) []string {
	var missing []string
	for _, key := range Requirements[backend].Required {
		if !in.IsSet(key) {
			missing = append(missing, key)
		}
	}
	return missing
}
