package updateservice

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBinaryContent = "new-binary-bytes"

func buildAssetZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("upkeep")
	require.NoError(t, err)
	_, err = w.Write([]byte(testBinaryContent))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// releaseServer serves a GitHub-shaped releases/latest response plus the
// archive and signature assets it references.
func releaseServer(t *testing.T, archive, signature []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/repos/redjax/upkeep/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		assets := fmt.Sprintf(`[
			{"name": "upkeep-linux-amd64-1.2.0.zip", "browser_download_url": "%[1]s/assets/upkeep-linux-amd64-1.2.0.zip"},
			{"name": "upkeep-linux-amd64-1.2.0.zip.sig", "browser_download_url": "%[1]s/assets/upkeep-linux-amd64-1.2.0.zip.sig"},
			{"name": "upkeep-macOS-arm64-1.2.0.zip", "browser_download_url": "%[1]s/assets/upkeep-macOS-arm64-1.2.0.zip"},
			{"name": "checksums.txt", "browser_download_url": "%[1]s/assets/checksums.txt"}
		]`, srv.URL)
		fmt.Fprintf(w, `{"tag_name": "v1.2.0", "assets": %s}`, assets)
	})
	mux.HandleFunc("/assets/upkeep-linux-amd64-1.2.0.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	mux.HandleFunc("/assets/upkeep-linux-amd64-1.2.0.zip.sig", func(w http.ResponseWriter, r *http.Request) {
		w.Write(signature)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubReleaseService_GetLatestRelease(t *testing.T) {
	archive := buildAssetZip(t)
	srv := releaseServer(t, archive, nil)

	svc := &GitHubReleaseService{
		Owner:   "redjax",
		Repo:    "upkeep",
		BinName: "upkeep",
		APIBase: srv.URL,
	}

	rel, err := svc.GetLatestRelease(context.Background(), "linux-amd64")
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", rel.Version)
	assert.Equal(t, "upkeep-linux-amd64-1.2.0.zip", rel.AssetName)
	assert.Contains(t, rel.AssetURL, "/assets/upkeep-linux-amd64-1.2.0.zip")
	assert.Contains(t, rel.SignatureURL, ".sig")
}

func TestGitHubReleaseService_NoAssetForTarget(t *testing.T) {
	srv := releaseServer(t, nil, nil)

	svc := &GitHubReleaseService{
		Owner:   "redjax",
		Repo:    "upkeep",
		BinName: "upkeep",
		APIBase: srv.URL,
	}

	_, err := svc.GetLatestRelease(context.Background(), "plan9-mips")

	assert.Error(t, err)
}

func TestGitHubReleaseService_UpdateVerifiesAndPlaces(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	archive := buildAssetZip(t)
	srv := releaseServer(t, archive, ed25519.Sign(priv, archive))

	svc := &GitHubReleaseService{
		Owner:     "redjax",
		Repo:      "upkeep",
		BinName:   "upkeep",
		PublicKey: pub,
		APIBase:   srv.URL,
	}

	rel, err := svc.GetLatestRelease(context.Background(), "linux-amd64")
	require.NoError(t, err)

	exePath := writeExe(t, t.TempDir(), []byte("old-binary"))
	status, err := svc.Update(context.Background(), rel, exePath)
	require.NoError(t, err)

	assert.True(t, status.Updated)
	assert.Equal(t, "v1.2.0", status.Version)

	got, err := os.ReadFile(exePath)
	require.NoError(t, err)
	assert.Equal(t, []byte(testBinaryContent), got)

	_, err = os.Stat(exePath + ".new")
	assert.True(t, os.IsNotExist(err), "no staged file left behind")

	info, err := os.Stat(exePath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "installed binary is executable")
}

func TestGitHubReleaseService_UpdateRejectsBadSignature(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, wrongPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	archive := buildAssetZip(t)
	srv := releaseServer(t, archive, ed25519.Sign(wrongPriv, archive))

	svc := &GitHubReleaseService{
		Owner:     "redjax",
		Repo:      "upkeep",
		BinName:   "upkeep",
		PublicKey: pub,
		APIBase:   srv.URL,
	}

	rel, err := svc.GetLatestRelease(context.Background(), "linux-amd64")
	require.NoError(t, err)

	exePath := writeExe(t, t.TempDir(), []byte("old-binary"))
	_, err = svc.Update(context.Background(), rel, exePath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")

	got, readErr := os.ReadFile(exePath)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("old-binary"), got, "a rejected archive never touches the executable")
}

func TestGitHubReleaseService_UpdateRequiresSignatureWhenKeyed(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	archive := buildAssetZip(t)
	srv := releaseServer(t, archive, nil)

	svc := &GitHubReleaseService{
		Owner:     "redjax",
		Repo:      "upkeep",
		BinName:   "upkeep",
		PublicKey: pub,
		APIBase:   srv.URL,
	}

	rel, err := svc.GetLatestRelease(context.Background(), "linux-amd64")
	require.NoError(t, err)
	rel.SignatureURL = ""

	exePath := writeExe(t, t.TempDir(), []byte("old-binary"))
	_, err = svc.Update(context.Background(), rel, exePath)

	assert.Error(t, err)
}

func TestGitHubReleaseService_FailedStagingLeavesNoNewFile(t *testing.T) {
	archive := buildAssetZip(t)
	srv := releaseServer(t, archive, nil)

	svc := &GitHubReleaseService{
		Owner:   "redjax",
		Repo:    "upkeep",
		BinName: "upkeep",
		APIBase: srv.URL,
	}

	rel, err := svc.GetLatestRelease(context.Background(), "linux-amd64")
	require.NoError(t, err)

	exePath := writeExe(t, t.TempDir(), []byte("old-binary"))
	// A directory squatting on the staging path makes the staging copy
	// fail partway through, like a full disk would.
	require.NoError(t, os.Mkdir(exePath+".new", 0o755))

	_, err = svc.Update(context.Background(), rel, exePath)
	require.Error(t, err)

	_, statErr := os.Stat(exePath + ".new")
	assert.True(t, os.IsNotExist(statErr), "a failed staging attempt must not leave bytes at the staging path")

	got, readErr := os.ReadFile(exePath)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("old-binary"), got)
}

func TestExtractBinaryFromZip_EmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := extractBinaryFromZip(path)

	assert.Error(t, err)
}

func TestNormalizeArch(t *testing.T) {
	assert.Equal(t, "amd64", NormalizeArch("x86_64"))
	assert.Equal(t, "arm64", NormalizeArch("aarch64"))
	assert.Equal(t, "amd64", NormalizeArch("amd64"))
	assert.Equal(t, "riscv64", NormalizeArch("riscv64"))
}
