// Package planner turns a validated kernel-family table and a probed
// planning context into resolved build targets plus per-family diagnostics.
// Planning is single-threaded and deterministic apart from the optional
// parallel generator phase; identical inputs yield identical plans.
package planner

import (
	"fmt"

	"github.com/leapstack-labs/kforge/internal/archspec"
	"github.com/leapstack-labs/kforge/internal/toolchain"
)

// Backend is the detected compiler backend kind, a small closed set.
type Backend string

const (
	BackendCUDA Backend = "cuda"
	BackendROCm Backend = "rocm"
	BackendCPU  Backend = "cpu"
)

// ParseBackend validates a backend kind string.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendCUDA, BackendROCm, BackendCPU:
		return Backend(s), nil
	default:
		return "", &ConfigurationError{Subject: s, Msg: "unknown backend kind (want cuda, rocm or cpu)"}
	}
}

// Context is the probed environment a planning run is resolved against.
// All fields come from external collaborators and are read-only here.
type Context struct {
	// Backend is the detected backend kind.
	Backend Backend
	// ToolchainVersion is the detected compiler toolchain version.
	ToolchainVersion string
	// Requested is the architecture set the build asks for.
	Requested archspec.Set
	// Libraries maps required external library handles to their resolved
	// locations. A handle absent from the map does not resolve.
	Libraries map[string]string
}

// Validate checks the context before any planning proceeds.
func (c *Context) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if err := toolchain.Validate(c.ToolchainVersion); err != nil {
		return fmt.Errorf("planning context: %w", err)
	}
	if c.Requested.Empty() {
		return &ConfigurationError{Subject: "architectures", Msg: "requested architecture set is empty"}
	}
	return nil
}

// ResolveLibrary reports whether a library handle resolves and to what.
// The empty handle means no library requirement and always resolves.
func (c *Context) ResolveLibrary(handle string) (string, bool) {
	if handle == "" {
		return "", true
	}
	loc, ok := c.Libraries[handle]
	return loc, ok
}

// ConfigurationError is a fatal pre-planning error: an unsupported backend
// kind, an unusable planning context, or a mandatory target that resolved to
// zero sources. It aborts the run before any target is emitted.
type ConfigurationError struct {
	Subject string
	Msg     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Msg)
}
