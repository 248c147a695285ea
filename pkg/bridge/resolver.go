package bridge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/CompassSecurity/bridgerun/pkg/httpclient"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"
)

// DefaultBaseURL is the public artifact repository hosting bridge releases.
const DefaultBaseURL = "https://sig-repo.synopsys.com/bds-integrations-release/com/synopsys/integration/synopsys-bridge"

var listingEntryRegex = regexp.MustCompile(`^\d+\.\d+\.\d+/$`)

// Resolver determines which bridge version to fetch and where it lives.
type Resolver struct {
	BaseURL  string
	Platform Platform
	client   *resty.Client
}

// NewResolver creates a resolver for baseURL. An empty baseURL selects DefaultBaseURL.
func NewResolver(baseURL string, platform Platform) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Platform: platform,
		client:   httpclient.GetListingClient(nil, 0),
	}
}

// ListVersions returns the version strings found in the repository directory listing,
// in document order.
func (r *Resolver) ListVersions(ctx context.Context) ([]string, error) {
	listingURL := r.BaseURL + "/"
	log.Debug().Str("url", listingURL).Msg("Fetching bridge version listing")

	res, err := r.client.R().SetContext(ctx).Get(listingURL)
	if err != nil {
		return nil, &NetworkError{URL: listingURL, Message: "failed fetching bridge version listing: " + err.Error(), Err: err}
	}
	if res.IsError() {
		return nil, &NetworkError{URL: listingURL, Message: fmt.Sprintf("failed fetching bridge version listing - %d", res.StatusCode())}
	}

	return parseListing(res.String())
}

func parseListing(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed parsing bridge version listing: %w", err)
	}

	var versions []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if listingEntryRegex.MatchString(href) {
			versions = append(versions, strings.TrimSuffix(href, "/"))
		}
	})
	return versions, nil
}

// LatestVersion returns the numerically greatest listed version.
func (r *Resolver) LatestVersion(ctx context.Context) (Version, error) {
	listed, err := r.ListVersions(ctx)
	if err != nil {
		return Version{}, err
	}
	return latestOf(listed)
}

func latestOf(listed []string) (Version, error) {
	if len(listed) == 0 {
		return Version{}, fmt.Errorf("%w: no bridge versions found in listing", ErrParseVersion)
	}

	var latest Version
	for i, entry := range listed {
		v, err := ParseVersion(entry)
		if err != nil {
			return Version{}, err
		}
		if i == 0 || v.Compare(latest) > 0 {
			latest = v
		}
	}
	return latest, nil
}

// ValidateBridgeVersion reports whether version is listed verbatim. Only transport
// failures produce an error.
func (r *Resolver) ValidateBridgeVersion(ctx context.Context, version string) (bool, error) {
	listed, err := r.ListVersions(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range listed {
		if v == version {
			return true, nil
		}
	}
	log.Debug().Str("version", version).Int("listed", len(listed)).Msg("Bridge version not in listing")
	return false, nil
}

// VersionURL builds the archive URL of version for the resolver's platform.
func (r *Resolver) VersionURL(version string) string {
	return r.BaseURL + "/" + version + "/" + r.Platform.ArchiveName()
}
