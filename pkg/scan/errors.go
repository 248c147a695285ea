package scan

// ConfigurationError reports that no usable backend selection was made.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ValidationError reports missing or invalid inputs for the selected backend.
type ValidationError struct {
	Backend Backend
	// Fields holds the offending input keys.
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
