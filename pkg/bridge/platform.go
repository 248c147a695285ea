package bridge

// Platform is the host identifier used in bridge archive names.
type Platform string

const (
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "win"
	PlatformLinux   Platform = "linux"
)

// DetectPlatform maps a GOOS value to the bridge platform. Anything that is not
// darwin or windows is treated as linux.
func DetectPlatform(goos string) Platform {
	switch goos {
	case "darwin":
		return PlatformMac
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// ExecutableName is the bridge binary name on p.
func (p Platform) ExecutableName() string {
	if p == PlatformWindows {
		return "bridge.exe"
	}
	return "bridge"
}

// ArchiveName is the bridge archive file name for p.
func (p Platform) ArchiveName() string {
	return "bridge-" + string(p) + ".zip"
}
