// Package cli defines the contract between the release workflow and the
// container engine binary it drives. Implementations live in
// internal/engine.
package cli

import "context"

type DaemonPingReport struct {
	Stdout string
	Stderr string
}

type ImageBuildOptions struct {
	// Ref is the repository:tag the build output is tagged with.
	Ref string
	// Dockerfile is the path to the build instructions file.
	Dockerfile string
	// ContextDir is the build context directory.
	ContextDir string
	NoCache    bool
	Labels     map[string]string
}

type ImageBuildReport struct {
	Stdout string
	Stderr string
}

type ImageInspectReport struct {
	// ID is the content hash of the image.
	ID string
}

type ImageTagOptions struct {
	// Source is an existing local image reference.
	Source string
	// Target is the additional reference to attach. Tagging attaches a
	// label to the same build output; it never copies the image.
	Target string
}

type RegistryLoginOptions struct {
	Username string
	// Registry may be empty, in which case the engine's default registry
	// is used.
	Registry string
	// Interactive attaches the operator's terminal so the engine can
	// prompt for a password.
	Interactive bool
}

type ImagePushReport struct {
	Stdout string
	Stderr string
}

// DockerEngine is the set of container engine operations the release
// workflow needs. The engine binary itself is a black box; each call
// blocks until the underlying tool returns.
type DockerEngine interface {
	Ping(ctx context.Context) (*DaemonPingReport, error)
	Build(ctx context.Context, opts ImageBuildOptions) (*ImageBuildReport, error)
	InspectImage(ctx context.Context, ref string) (*ImageInspectReport, error)
	Tag(ctx context.Context, opts ImageTagOptions) error
	Login(ctx context.Context, opts RegistryLoginOptions) error
	Push(ctx context.Context, ref string) (*ImagePushReport, error)
}
