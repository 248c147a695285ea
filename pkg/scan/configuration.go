// Package scan classifies the requested scan backend and enforces the inputs each backend needs.
package scan

// Backend names one of the supported scan backends.
type Backend string

const (
	BackendPolaris   Backend = "polaris"
	BackendBlackDuck Backend = "blackduck"
	BackendCoverity  Backend = "coverity"
)

// Configuration is the validated scan configuration of exactly one backend.
// The set of implementations is closed: Polaris, BlackDuck and Coverity.
type Configuration interface {
	Backend() Backend
	// Stage is the bridge stage that runs this backend.
	Stage() string
	isConfiguration()
}

type Polaris struct {
	ServerURL       string
	AccessToken     string
	ApplicationName string
	ProjectName     string
	AssessmentTypes []string
}

func (Polaris) Backend() Backend { return BackendPolaris }
func (Polaris) Stage() string    { return "polaris" }
func (Polaris) isConfiguration() {}

type BlackDuck struct {
	URL               string
	APIToken          string
	InstallDirectory  string
	ScanFull          bool
	FailureSeverities []string
}

func (BlackDuck) Backend() Backend { return BackendBlackDuck }
func (BlackDuck) Stage() string    { return "blackduck" }
func (BlackDuck) isConfiguration() {}

type Coverity struct {
	URL              string
	User             string
	Passphrase       string
	ProjectName      string
	StreamName       string
	InstallDirectory string
	PolicyView       string
	RepositoryName   string
	BranchName       string
}

func (Coverity) Backend() Backend { return BackendCoverity }

// Stage for Coverity is "connect", the bridge's name for Coverity Connect.
func (Coverity) Stage() string    { return "connect" }
func (Coverity) isConfiguration() {}
