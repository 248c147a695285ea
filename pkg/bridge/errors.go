package bridge

import "fmt"

// NetworkError covers listing and download failures.
type NetworkError struct {
	URL     string
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// VersionNotFoundError is returned when an explicitly requested version is not published.
type VersionNotFoundError struct {
	Version string
}

func (e *VersionNotFoundError) Error() string { return "bridge version not found in artifactory" }

// BridgeNotFoundError is returned when no bridge executable could be located.
type BridgeNotFoundError struct {
	Name     string
	Searched []string
}

func (e *BridgeNotFoundError) Error() string { return "bridge executable not found" }

// ExitCodeError reports a non-zero bridge exit.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("The process failed with exit code %d", e.Code)
}
