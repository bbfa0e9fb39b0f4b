package platforms

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when required OAuth application settings are
// missing. It fails the operation before any network call.
type ConfigurationError struct {
	Platform string
	Missing  []string
}

func (e ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s is not configured", e.Platform)
	}
	return fmt.Sprintf("%s is not configured (missing %s)", e.Platform, strings.Join(e.Missing, ", "))
}

// AuthorizationError captures state mismatch or user denial at the callback.
type AuthorizationError struct {
	Platform string
	Reason   string
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("%s authorization failed: %s", e.Platform, e.Reason)
}

// ExchangeError is returned when the token endpoint rejects an authorization
// code. The raw response body is preserved for operator diagnosis.
type ExchangeError struct {
	Platform string
	Status   int
	Body     string
}

func (e ExchangeError) Error() string {
	return fmt.Sprintf("%s code exchange rejected (status %d): %s", e.Platform, e.Status, e.Body)
}

// UpgradeError is returned when the long-lived token exchange fails. The
// credential is left unchanged.
type UpgradeError struct {
	Platform string
	Status   int
	Body     string
}

func (e UpgradeError) Error() string {
	return fmt.Sprintf("%s token upgrade rejected (status %d): %s", e.Platform, e.Status, e.Body)
}

// ResolutionError is returned when the account resolution chain cannot reach
// a publishable account id. It carries the full diagnostic trail because the
// usual root cause is platform-side misconfiguration the operator must
// self-diagnose.
type ResolutionError struct {
	Platform string
	Reason   string
	Trail    Trail
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("%s account resolution failed: %s", e.Platform, e.Reason)
}

// ContainerError is returned on an HTTP failure at container create, status
// poll, or publish. Body holds the platform's raw error payload.
type ContainerError struct {
	Platform string
	Op       string
	Status   int
	Body     string
}

func (e ContainerError) Error() string {
	return fmt.Sprintf("%s %s failed (status %d): %s", e.Platform, e.Op, e.Status, e.Body)
}

// TimeoutError marks a job that exhausted its polling budget without the
// container reaching a terminal state. Distinct from ContainerError so
// callers can choose to retry the whole job later.
type TimeoutError struct {
	Platform    string
	ContainerID string
	Attempts    int
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%s container %s still processing after %d attempts", e.Platform, e.ContainerID, e.Attempts)
}
