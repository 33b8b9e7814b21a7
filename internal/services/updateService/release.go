package updateservice

import "context"

// ReleaseDescriptor describes the latest published release for one platform
// target, as resolved by a ReleaseService. The orchestrator only looks at
// Version; the rest is opaque service state carried back into Update.
type ReleaseDescriptor struct {
	// Version is the release identifier as published (may carry a leading
	// "v"). It must be semver-comparable against the running version.
	Version string
	// Target is the "<os>-<arch>" identifier the release was resolved for.
	Target string
	// AssetName and AssetURL locate the archive for Target.
	AssetName string
	AssetURL  string
	// SignatureURL locates the detached signature for the archive, when the
	// release publishes one.
	SignatureURL string
}

// UpdateStatus is the result of a completed swap.
type UpdateStatus struct {
	// Updated is false when the service decided no swap was needed.
	Updated bool
	// Version is the installed version when Updated is true.
	Version string
}

// ReleaseService is the external release-distribution collaborator. It owns
// discovery, download, signature verification and atomic placement of the
// new binary; the orchestrator only sequences around it and reacts to
// success or failure.
type ReleaseService interface {
	// GetLatestRelease resolves the most recent release for target.
	GetLatestRelease(ctx context.Context, target string) (*ReleaseDescriptor, error)

	// Update downloads rel's asset, verifies it, and atomically places the
	// contained binary at exePath. The caller has already created a backup.
	Update(ctx context.Context, rel *ReleaseDescriptor, exePath string) (UpdateStatus, error)
}
