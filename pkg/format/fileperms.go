package format

import "io/fs"

// Common file permission constants used throughout the application.
const (
	// DirUserGroupRead is for directories that should be readable by owner and group (rwxr-x---)
	DirUserGroupRead fs.FileMode = 0750

	// FileExecutable is for extracted binaries that must stay runnable (rwxr-xr-x)
	FileExecutable fs.FileMode = 0755

	// FileUserReadWrite is for files that should only be readable by owner (rw-------)
	// Used for the bridge input payload, which carries access tokens and passphrases
	FileUserReadWrite fs.FileMode = 0600
)
