package bridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CompassSecurity/bridgerun/pkg/format"
	"github.com/CompassSecurity/bridgerun/pkg/httpclient"
	"github.com/h2non/filetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golift.io/xtractr"
)

// DefaultInstallDirName is created below the user's home directory when no install path is given.
const DefaultInstallDirName = "synopsys-bridge"

var urlVersionRegex = regexp.MustCompile(`\d+\.\d+\.\d+`)

// InstalledArtifact describes an unpacked bridge ready to run.
type InstalledArtifact struct {
	Dir        string
	Executable string
	// Version is empty when an explicit download URL did not carry one.
	Version string
	URL     string
	// Cached is true when an existing installation was reused.
	Cached bool
}

// FetchOptions control what DownloadBridge retrieves.
type FetchOptions struct {
	// DownloadURL is the raw user value. Empty means not supplied.
	DownloadURL string
	Version     string
	InstallDir  string
	// MaxDownloadSize in bytes, zero disables the limit.
	MaxDownloadSize int64
}

// Fetcher retrieves and unpacks bridge archives.
type Fetcher struct {
	Resolver *Resolver
	Options  FetchOptions
	client   *retryablehttp.Client
}

func NewFetcher(resolver *Resolver, opts FetchOptions) *Fetcher {
	return &Fetcher{
		Resolver: resolver,
		Options:  opts,
		client:   httpclient.GetDownloadClient(nil, 0),
	}
}

// DefaultInstallDir returns $HOME/synopsys-bridge, falling back to the working directory.
func DefaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Debug().Err(err).Msg("No home directory, installing bridge below working directory")
		return DefaultInstallDirName
	}
	return filepath.Join(home, DefaultInstallDirName)
}

func (f *Fetcher) installDir() string {
	if f.Options.InstallDir != "" {
		return f.Options.InstallDir
	}
	return DefaultInstallDir()
}

// ResolveDownload determines the archive URL and version using, in order: the explicit
// download URL, the explicit version, the latest listed version.
func (f *Fetcher) ResolveDownload(ctx context.Context) (downloadURL string, version string, err error) {
	if explicit, ok, err := f.explicitURL(); ok || err != nil {
		return explicit, urlVersionRegex.FindString(explicit), err
	}

	if v := strings.TrimSpace(f.Options.Version); v != "" {
		downloadURL, err := f.pinnedURL(ctx, v)
		return downloadURL, v, err
	}

	return f.latestURL(ctx)
}

// pinnedURL checks that version is listed in the artifact repository and returns its archive URL.
func (f *Fetcher) pinnedURL(ctx context.Context, version string) (string, error) {
	ok, err := f.Resolver.ValidateBridgeVersion(ctx, version)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &VersionNotFoundError{Version: version}
	}
	return f.Resolver.VersionURL(version), nil
}

func (f *Fetcher) latestURL(ctx context.Context) (string, string, error) {
	latest, err := f.Resolver.LatestVersion(ctx)
	if err != nil {
		return "", "", err
	}
	log.Info().Str("version", latest.String()).Msg("Using latest bridge version")
	return f.Resolver.VersionURL(latest.String()), latest.String(), nil
}

// explicitURL validates the user supplied download URL. ok is false when none was supplied.
func (f *Fetcher) explicitURL() (string, bool, error) {
	if f.Options.DownloadURL == "" {
		return "", false, nil
	}
	downloadURL := strings.TrimSpace(f.Options.DownloadURL)
	if downloadURL == "" {
		return "", true, &NetworkError{Message: "Bridge URL cannot be empty"}
	}
	if !ValidateBridgeURL(downloadURL, f.Resolver.Platform) {
		return "", true, &NetworkError{URL: downloadURL, Message: "Bridge url is not valid"}
	}
	return downloadURL, true, nil
}

// ValidateBridgeURL reports whether rawURL points at a zip archive for platform.
func ValidateBridgeURL(rawURL string, platform Platform) bool {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		name = parsed.Path
	}
	name = strings.ToLower(path.Base(name))
	return strings.HasSuffix(name, ".zip") && strings.Contains(name, string(platform))
}

// DownloadBridge makes sure a bridge is installed and returns it. Archives are downloaded into tempDir.
// An explicit version is always checked against the listing. Otherwise an existing installation
// is reused without touching the network.
func (f *Fetcher) DownloadBridge(ctx context.Context, tempDir string) (InstalledArtifact, error) {
	downloadURL, hasExplicit, err := f.explicitURL()
	if err != nil {
		return InstalledArtifact{}, err
	}
	version := urlVersionRegex.FindString(downloadURL)

	if pinned := strings.TrimSpace(f.Options.Version); !hasExplicit && pinned != "" {
		if downloadURL, err = f.pinnedURL(ctx, pinned); err != nil {
			return InstalledArtifact{}, err
		}
		version = pinned
	}

	installDir := f.installDir()
	executable := filepath.Join(installDir, f.Resolver.Platform.ExecutableName())

	if format.IsRegularFile(executable) {
		log.Info().Str("dir", installDir).Msg("Bridge already installed, skipping download")
		return InstalledArtifact{Dir: installDir, Executable: executable, Version: version, URL: downloadURL, Cached: true}, nil
	}

	if downloadURL == "" {
		if downloadURL, version, err = f.latestURL(ctx); err != nil {
			return InstalledArtifact{}, err
		}
	}

	archive := filepath.Join(tempDir, f.Resolver.Platform.ArchiveName())
	if err := f.download(ctx, downloadURL, archive); err != nil {
		return InstalledArtifact{}, err
	}

	found, err := extractBridge(archive, installDir, f.Resolver.Platform.ExecutableName())
	if err != nil {
		return InstalledArtifact{}, err
	}

	log.Info().Str("dir", installDir).Str("version", version).Msg("Bridge installed")
	return InstalledArtifact{Dir: installDir, Executable: found, Version: version, URL: downloadURL}, nil
}

func (f *Fetcher) download(ctx context.Context, downloadURL string, dest string) error {
	log.Info().Str("url", downloadURL).Msg("Downloading bridge")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return &NetworkError{URL: downloadURL, Message: "Bridge url is not valid", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &NetworkError{URL: downloadURL, Message: "failed downloading bridge: " + err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NetworkError{URL: downloadURL, Message: fmt.Sprintf("URL not found - %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return &NetworkError{URL: downloadURL, Message: fmt.Sprintf("failed downloading bridge - %d", resp.StatusCode)}
	}

	maxSize := f.Options.MaxDownloadSize
	if maxSize > 0 && resp.ContentLength > maxSize {
		return &NetworkError{URL: downloadURL, Message: fmt.Sprintf("bridge archive too large: %s exceeds limit of %s", format.HumanSize(resp.ContentLength), format.HumanSize(maxSize))}
	}

	// #nosec G304 - archive path is built from the job's own temp directory
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, format.FileUserReadWrite)
	if err != nil {
		return fmt.Errorf("failed creating bridge archive file: %w", err)
	}
	defer func() { _ = out.Close() }()

	var body io.Reader = resp.Body
	if maxSize > 0 {
		body = io.LimitReader(resp.Body, maxSize+1)
	}

	written, err := io.Copy(out, body)
	if err != nil {
		return &NetworkError{URL: downloadURL, Message: "failed downloading bridge: " + err.Error(), Err: err}
	}
	if maxSize > 0 && written > maxSize {
		return &NetworkError{URL: downloadURL, Message: fmt.Sprintf("bridge archive too large: exceeds limit of %s", format.HumanSize(maxSize))}
	}

	log.Debug().Str("file", dest).Str("size", format.HumanSize(written)).Msg("Downloaded bridge archive")
	return out.Sync()
}

// extractBridge unpacks archive into installDir and returns the path of the bridge executable.
func extractBridge(archive string, installDir string, executableName string) (string, error) {
	if err := checkZip(archive); err != nil {
		return "", err
	}

	if err := os.MkdirAll(installDir, format.DirUserGroupRead); err != nil {
		return "", fmt.Errorf("failed creating bridge install directory: %w", err)
	}

	x := &xtractr.XFile{
		FilePath:  archive,
		OutputDir: installDir,
		FileMode:  format.FileUserReadWrite,
		DirMode:   format.DirUserGroupRead,
	}

	size, files, _, err := xtractr.ExtractFile(x)
	if err != nil {
		return "", fmt.Errorf("failed extracting bridge archive: %w", err)
	}
	log.Debug().Int("files", len(files)).Str("size", format.HumanSize(size)).Msg("Extracted bridge archive")

	executable := filepath.Join(installDir, executableName)
	if !format.IsRegularFile(executable) {
		executable = ""
		for _, fPath := range files {
			if filepath.Base(fPath) == executableName && format.IsRegularFile(fPath) {
				executable = fPath
				break
			}
		}
	}
	if executable == "" {
		return "", &BridgeNotFoundError{Name: executableName, Searched: []string{installDir}}
	}

	if err := os.Chmod(executable, format.FileExecutable); err != nil {
		return "", fmt.Errorf("failed marking bridge executable: %w", err)
	}
	return executable, nil
}

func checkZip(archive string) error {
	// #nosec G304 - archive path is built from the job's own temp directory
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed opening bridge archive: %w", err)
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, 262)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed reading bridge archive: %w", err)
	}

	if !filetype.Is(head[:n], "zip") {
		kind, _ := filetype.Match(head[:n])
		return fmt.Errorf("downloaded bridge is not a zip archive (detected %s)", kind.MIME.Value)
	}
	return nil
}
