package updateservice

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// PublicKeyHex is the hex-encoded ed25519 release signing key, injected at
// build time via ldflags the same way the version metadata is. Builds
// without a key skip signature verification.
var PublicKeyHex = ""

// Options collects everything needed to assemble one update attempt.
type Options struct {
	// Owner/Repo identify the GitHub repository releases are published to.
	Owner string
	Repo  string
	// BinName matches the binary name inside release archives and names the
	// per-user cache dir holding the blacklist.
	BinName string
	// CurrentVersion is the running binary's version string.
	CurrentVersion string
	// SelfTestArg is passed to the candidate binary for the health check.
	SelfTestArg string
	// HealthTimeout caps the self-test run; zero uses the default.
	HealthTimeout time.Duration
	// Logger receives worker diagnostics; nil discards them.
	Logger *log.Logger
}

// New assembles an orchestrator against the live GitHub release service,
// the on-disk blacklist and an exec-based health checker.
func New(opts Options) (*Orchestrator, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable path: %w", err)
	}

	var key ed25519.PublicKey
	if PublicKeyHex != "" {
		raw, err := hex.DecodeString(PublicKeyHex)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("embedded release key is malformed")
		}
		key = ed25519.PublicKey(raw)
	}

	return &Orchestrator{
		CurrentVersion: opts.CurrentVersion,
		ExePath:        exePath,
		Releases: &GitHubReleaseService{
			Owner:     opts.Owner,
			Repo:      opts.Repo,
			BinName:   opts.BinName,
			PublicKey: key,
		},
		Health: &ExecHealthChecker{
			SelfTestArg: opts.SelfTestArg,
			Timeout:     opts.HealthTimeout,
		},
		Blacklist: LoadBlacklist(BlacklistPath(opts.BinName)),
		Notifier:  NewNotifier(),
		Logger:    opts.Logger,
	}, nil
}
