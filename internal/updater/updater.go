// Package updater checks GitHub releases for newer application builds.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	githubAPIBase  = "https://api.github.com"
	requestTimeout = 10 * time.Second
)

// Release describes an available update
type Release struct {
	Version     string
	Changelog   string
	PublishedAt string
	AssetName   string
	AssetSize   int64
	DownloadURL string
}

type releasePayload struct {
	TagName     string         `json:"tag_name"`
	Body        string         `json:"body"`
	PublishedAt string         `json:"published_at"`
	Assets      []releaseAsset `json:"assets"`
}

type releaseAsset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Checker queries the GitHub releases feed of one repository
type Checker struct {
	client  *http.Client
	baseURL string
	owner   string
	repo    string
	current string
	logger  *zap.Logger
}

// New creates a checker comparing against the given current version
func New(owner, repo, current string, logger *zap.Logger) *Checker {
	return &Checker{
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: githubAPIBase,
		owner:   owner,
		repo:    repo,
		current: current,
		logger:  logger,
	}
}

// Check returns the latest release when it is newer than the current
// version and carries an asset for this platform, nil when up to date.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no release feed for %s/%s", c.owner, c.repo)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("update check failed: HTTP %d", resp.StatusCode)
	}

	var payload releasePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode release feed: %w", err)
	}

	latest := strings.TrimPrefix(payload.TagName, "v")
	if !IsNewerVersion(latest, strings.TrimPrefix(c.current, "v")) {
		c.logger.Info("Application is up to date", zap.String("version", c.current))
		return nil, nil
	}

	asset := platformAsset(payload.Assets)
	if asset == nil {
		c.logger.Warn("Newer release has no asset for this platform",
			zap.String("version", latest),
			zap.String("os", runtime.GOOS))
		return nil, nil
	}

	return &Release{
		Version:     latest,
		Changelog:   payload.Body,
		PublishedAt: payload.PublishedAt,
		AssetName:   asset.Name,
		AssetSize:   asset.Size,
		DownloadURL: asset.BrowserDownloadURL,
	}, nil
}

// Download fetches the release asset into destDir, reporting byte
// progress through onProgress when non-nil. Returns the written path.
func (c *Checker) Download(ctx context.Context, rel *Release, destDir string, onProgress func(done, total int64)) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rel.DownloadURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("update download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("update download failed: HTTP %d", resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(destDir, rel.AssetName)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	var done int64
	buf := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return "", err
			}
			done += int64(n)
			if onProgress != nil {
				onProgress(done, rel.AssetSize)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("update download interrupted: %w", readErr)
		}
	}
	return path, nil
}

// IsNewerVersion compares dotted numeric versions. Versions that do not
// parse fall back to plain string comparison.
func IsNewerVersion(latest, current string) bool {
	lp, lok := parseVersion(latest)
	cp, cok := parseVersion(current)
	if !lok || !cok {
		return latest > current
	}
	for i := 0; i < len(lp) || i < len(cp); i++ {
		l, c := versionPart(lp, i), versionPart(cp, i)
		if l != c {
			return l > c
		}
	}
	return false
}

func parseVersion(v string) ([]int, bool) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, len(nums) > 0
}

func versionPart(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

var assetMarkers = map[string][]string{
	"windows": {".exe", "-windows", "-win"},
	"darwin":  {".dmg", ".pkg", "-macos", "-darwin"},
	"linux":   {".appimage", "-linux", ".deb", ".rpm"},
}

// platformAsset picks the release asset matching the running OS
func platformAsset(assets []releaseAsset) *releaseAsset {
	markers := assetMarkers[runtime.GOOS]
	for i := range assets {
		name := strings.ToLower(assets[i].Name)
		for _, marker := range markers {
			if strings.Contains(name, marker) {
				return &assets[i]
			}
		}
	}
	return nil
}
