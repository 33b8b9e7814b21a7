package updateservice

import (
	"archive/zip"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.github.com"

// GitHubReleaseService resolves and installs releases published as GitHub
// release assets named "<bin>-<os>-<arch>-<version>.zip", optionally with a
// detached "<asset>.sig" ed25519 signature over the archive bytes.
type GitHubReleaseService struct {
	Owner   string
	Repo    string
	BinName string

	// PublicKey verifies the detached signature. When set, a release
	// without a valid signature is rejected; when nil (dev builds),
	// verification is skipped.
	PublicKey ed25519.PublicKey

	// APIBase overrides the GitHub API endpoint, for tests.
	APIBase string

	// Client defaults to a client with a sane timeout.
	Client *http.Client
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

func (s *GitHubReleaseService) apiBase() string {
	if s.APIBase != "" {
		return strings.TrimSuffix(s.APIBase, "/")
	}
	return defaultAPIBase
}

func (s *GitHubReleaseService) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// GetLatestRelease queries the releases/latest endpoint and picks the asset
// matching target. macOS asset names are matched with exact casing, the
// rest case-insensitively.
func (s *GitHubReleaseService) GetLatestRelease(ctx context.Context, target string) (*ReleaseDescriptor, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", s.apiBase(), s.Owner, s.Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build release request: %w", err)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status: %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release JSON: %w", err)
	}

	expectedPrefix := fmt.Sprintf("%s-%s-", s.BinName, target)
	caseExact := strings.Contains(target, "macOS")

	desc := &ReleaseDescriptor{
		Version: release.TagName,
		Target:  target,
	}
	for _, asset := range release.Assets {
		if asset.Name == "" {
			continue
		}
		var match bool
		if caseExact {
			match = strings.HasPrefix(asset.Name, expectedPrefix) && strings.HasSuffix(asset.Name, ".zip")
		} else {
			lower := strings.ToLower(asset.Name)
			match = strings.HasPrefix(lower, strings.ToLower(expectedPrefix)) && strings.HasSuffix(lower, ".zip")
		}
		if match {
			desc.AssetName = asset.Name
			desc.AssetURL = asset.BrowserDownloadURL
			break
		}
	}
	if desc.AssetURL == "" {
		return nil, fmt.Errorf("no suitable release asset for target %s in %s", target, release.TagName)
	}

	// Detached signature is published next to the archive.
	sigName := desc.AssetName + ".sig"
	for _, asset := range release.Assets {
		if asset.Name == sigName {
			desc.SignatureURL = asset.BrowserDownloadURL
			break
		}
	}

	return desc, nil
}

// Update downloads the archive, verifies its signature, extracts the binary
// and atomically places it at exePath via a same-directory rename.
func (s *GitHubReleaseService) Update(ctx context.Context, rel *ReleaseDescriptor, exePath string) (UpdateStatus, error) {
	archive, err := s.downloadTemp(ctx, rel.AssetURL, "upkeep-upgrade-*.zip")
	if err != nil {
		return UpdateStatus{}, fmt.Errorf("failed to download release archive: %w", err)
	}
	defer os.Remove(archive)

	if s.PublicKey != nil {
		if err := s.verifySignature(ctx, rel, archive); err != nil {
			return UpdateStatus{}, err
		}
	}

	binaryTmp, err := extractBinaryFromZip(archive)
	if err != nil {
		return UpdateStatus{}, fmt.Errorf("failed to extract binary: %w", err)
	}
	defer os.Remove(binaryTmp)

	// Stage next to the target so the final rename stays on one filesystem.
	staged := exePath + ".new"
	if err := copyFile(binaryTmp, staged); err != nil {
		// An interrupted copy leaves truncated bytes at the staging path;
		// they must not survive the attempt.
		os.Remove(staged)
		return UpdateStatus{}, fmt.Errorf("failed to stage new binary: %w", err)
	}
	if err := os.Rename(staged, exePath); err != nil {
		os.Remove(staged)
		return UpdateStatus{}, fmt.Errorf("failed to place new binary: %w", err)
	}

	return UpdateStatus{Updated: true, Version: rel.Version}, nil
}

func (s *GitHubReleaseService) verifySignature(ctx context.Context, rel *ReleaseDescriptor, archivePath string) error {
	if rel.SignatureURL == "" {
		return fmt.Errorf("release %s publishes no signature for %s", rel.Version, rel.AssetName)
	}

	sigTmp, err := s.downloadTemp(ctx, rel.SignatureURL, "upkeep-sig-*")
	if err != nil {
		return fmt.Errorf("failed to download signature: %w", err)
	}
	defer os.Remove(sigTmp)

	sig, err := os.ReadFile(sigTmp)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}
	payload, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("failed to read archive for verification: %w", err)
	}

	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(s.PublicKey, payload, sig) {
		return fmt.Errorf("signature verification failed for %s", rel.AssetName)
	}
	return nil
}

func (s *GitHubReleaseService) downloadTemp(ctx context.Context, url, pattern string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// extractBinaryFromZip extracts the first file from the archive to a temp
// path and marks it executable.
func extractBinaryFromZip(zipPath string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}

		tmpBin, err := os.CreateTemp("", "upkeep-bin-*")
		if err != nil {
			rc.Close()
			return "", err
		}

		_, copyErr := io.Copy(tmpBin, rc)
		rc.Close()
		if copyErr != nil {
			tmpBin.Close()
			os.Remove(tmpBin.Name())
			return "", copyErr
		}
		if err := tmpBin.Close(); err != nil {
			os.Remove(tmpBin.Name())
			return "", err
		}

		if err := os.Chmod(tmpBin.Name(), 0o755); err != nil {
			os.Remove(tmpBin.Name())
			return "", err
		}
		return tmpBin.Name(), nil
	}

	return "", fmt.Errorf("no binary found in zip archive")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Chmod(0o755); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
