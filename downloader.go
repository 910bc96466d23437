package wpe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"
)

const (
	githubAPIURL   = "https://api.github.com"
	releaseTimeout = 10 * time.Second
)

// Variants of a prebuilt backend, most capable first.
const (
	VariantAVX512   = "avx512"
	VariantAVX2     = "avx2"
	VariantAVX      = "avx"
	VariantFallback = "fallback"
)

// ErrNoAsset is returned when a release has no library for the platform.
var ErrNoAsset = errors.New("no suitable backend library in release")

// LibraryDownloader fetches prebuilt backend libraries from GitHub releases.
type LibraryDownloader struct {
	client     *grab.Client
	httpClient *http.Client
	repo       string
	targetDir  string

	// APIURL is the GitHub API base URL.
	APIURL string
}

// NewLibraryDownloader creates a downloader for the releases of repo
// ("owner/name") saving into targetDir.
func NewLibraryDownloader(repo, targetDir string) *LibraryDownloader {
	return &LibraryDownloader{
		client:     grab.NewClient(),
		httpClient: &http.Client{Timeout: releaseTimeout},
		repo:       repo,
		targetDir:  targetDir,
		APIURL:     githubAPIURL,
	}
}

// ReleaseInfo represents GitHub release information
type ReleaseInfo struct {
	TagName string         `json:"tag_name"`
	Assets  []ReleaseAsset `json:"assets"`
}

// ReleaseAsset is a file attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// LibraryAsset represents a downloadable library
type LibraryAsset struct {
	Name     string
	URL      string
	Size     int64
	Variant  string
	Platform *PlatformInfo
}

// GetLatestRelease fetches the latest release info from GitHub
func (d *LibraryDownloader) GetLatestRelease(ctx context.Context) (*ReleaseInfo, error) {
	url := strings.TrimSuffix(d.APIURL, "/") + "/repos/" + d.repo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release info: %w", err)
	}
	return &release, nil
}

// SelectBestLibrary selects the library for base (e.g. "WPEBackend-fdo")
// with the most capable CPU variant the platform supports.
func (d *LibraryDownloader) SelectBestLibrary(release *ReleaseInfo, platform *PlatformInfo, base string) (*LibraryAsset, error) {
	var candidates []LibraryAsset
	for _, asset := range release.Assets {
		if !matchesPlatform(asset.Name, platform, base) {
			continue
		}
		candidates = append(candidates, LibraryAsset{
			Name:     asset.Name,
			URL:      asset.BrowserDownloadURL,
			Size:     asset.Size,
			Variant:  detectVariant(asset.Name),
			Platform: platform,
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s for %s/%s", ErrNoAsset, base, platform.OS, platform.Arch)
	}
	return selectBestVariant(candidates, platform), nil
}

func matchesPlatform(filename string, platform *PlatformInfo, base string) bool {
	return strings.HasPrefix(filename, platform.Prefix+base) &&
		strings.HasSuffix(filename, platform.Extension) &&
		strings.Contains(filename, platform.Arch)
}

func detectVariant(filename string) string {
	switch {
	case strings.Contains(filename, VariantAVX512):
		return VariantAVX512
	case strings.Contains(filename, VariantAVX2):
		return VariantAVX2
	case strings.Contains(filename, VariantAVX):
		return VariantAVX
	}
	return VariantFallback
}

func supportsVariant(p *PlatformInfo, variant string) bool {
	switch variant {
	case VariantAVX512:
		return p.SupportsAVX512
	case VariantAVX2:
		return p.SupportsAVX2
	case VariantAVX:
		return p.SupportsAVX
	}
	return true
}

func selectBestVariant(candidates []LibraryAsset, platform *PlatformInfo) *LibraryAsset {
	for _, variant := range []string{VariantAVX512, VariantAVX2, VariantAVX, VariantFallback} {
		if !supportsVariant(platform, variant) {
			continue
		}
		for _, c := range candidates {
			if c.Variant == variant {
				return &c
			}
		}
	}
	// Nothing the CPU is known to support; the first asset is as good a guess as any.
	return &candidates[0]
}

// ProgressCallback is called during download to report progress
type ProgressCallback func(bytesComplete, totalBytes int64, mbps float64, done bool)

// Download downloads the library with resume support and returns its path.
// progress may be nil.
func (d *LibraryDownloader) Download(ctx context.Context, asset *LibraryAsset, progress ProgressCallback) (string, error) {
	if err := os.MkdirAll(d.targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	outputPath := filepath.Join(d.targetDir, filepath.Base(asset.Name))
	req, err := grab.NewRequest(outputPath, asset.URL)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	req = req.WithContext(ctx)

	if info, err := os.Stat(outputPath); err == nil {
		Logger().Info("resuming download", "path", outputPath, "bytes", info.Size())
	}

	resp := d.client.Do(req)

	if progress != nil {
		start := time.Now()
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
	loop:
		for {
			select {
			case <-t.C:
				complete := resp.BytesComplete()
				var mbps float64
				if elapsed := time.Since(start).Seconds(); elapsed > 0 {
					mbps = float64(complete) / (1024 * 1024) / elapsed
				}
				progress(complete, resp.Size(), mbps, false)
			case <-resp.Done:
				complete := resp.BytesComplete()
				progress(complete, complete, 0, true)
				break loop
			}
		}
	}

	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	return resp.Filename, nil
}

// DownloadLatest downloads the best build of base from the latest release
// for the current platform.
func (d *LibraryDownloader) DownloadLatest(ctx context.Context, base string, progress ProgressCallback) (string, error) {
	platform := DetectPlatform()
	log := Logger()
	log.Info("detected platform", "os", platform.OS, "arch", platform.Arch,
		"avx", platform.SupportsAVX, "avx2", platform.SupportsAVX2, "avx512", platform.SupportsAVX512)

	release, err := d.GetLatestRelease(ctx)
	if err != nil {
		return "", err
	}
	log.Info("latest release", "repo", d.repo, "tag", release.TagName)

	asset, err := d.SelectBestLibrary(release, platform, base)
	if err != nil {
		return "", err
	}
	log.Info("selected library", "name", asset.Name, "variant", asset.Variant, "size", asset.Size)

	return d.Download(ctx, asset, progress)
}
