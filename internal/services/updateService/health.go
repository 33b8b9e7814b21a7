package updateservice

import (
	"context"
	"os/exec"
	"time"
)

// DefaultHealthTimeout bounds the self-test run. A candidate that hangs on
// startup is as broken as one that crashes.
const DefaultHealthTimeout = 30 * time.Second

// HealthChecker classifies a candidate binary as healthy or not before the
// backup is committed. A static check (checksum, signature) cannot catch a
// well-formed binary that crashes on startup, so the gate is an actual
// execution probe.
type HealthChecker interface {
	Verify(ctx context.Context, candidatePath string) error
}

// ExecHealthChecker runs the candidate as a child process with the
// self-test argument and requires a zero exit status. The self-test path in
// the binary only validates startup and never re-enters the update flow.
type ExecHealthChecker struct {
	// SelfTestArg is the argument recognized by the binary as "run the
	// startup self-test and exit".
	SelfTestArg string
	// Timeout caps the child's runtime. Zero means DefaultHealthTimeout.
	Timeout time.Duration
}

// Verify returns nil only when the candidate launches and exits 0 within
// the timeout. Launch failures, non-zero exits and timeouts all classify
// the candidate as unhealthy.
func (h *ExecHealthChecker) Verify(ctx context.Context, candidatePath string) error {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, candidatePath, h.SelfTestArg)
	return cmd.Run()
}
