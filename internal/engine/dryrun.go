package engine

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nandakiran-r/TestPiper/internal/cli"
)

// dryRunEngine prints the command each operation would run and succeeds
// without side effects.
type dryRunEngine struct {
	binary string
}

// NewDryRunEngine returns an engine that logs instead of executing.
func NewDryRunEngine() cli.DockerEngine {
	return &dryRunEngine{binary: "docker"}
}

func (d *dryRunEngine) echo(args ...string) {
	log.Infof("[dry-run] %s %s", d.binary, strings.Join(args, " "))
}

func (d *dryRunEngine) Ping(ctx context.Context) (*cli.DaemonPingReport, error) {
	d.echo("info", "--format", "{{.ServerVersion}}")
	return &cli.DaemonPingReport{}, nil
}

func (d *dryRunEngine) Build(ctx context.Context, opts cli.ImageBuildOptions) (*cli.ImageBuildReport, error) {
	args := []string{"build", "-t", opts.Ref}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	d.echo(append(args, contextDir)...)
	return &cli.ImageBuildReport{}, nil
}

func (d *dryRunEngine) InspectImage(ctx context.Context, ref string) (*cli.ImageInspectReport, error) {
	d.echo("image", "inspect", "--format", "{{.Id}}", ref)
	return &cli.ImageInspectReport{ID: "sha256:dryrun"}, nil
}

func (d *dryRunEngine) Tag(ctx context.Context, opts cli.ImageTagOptions) error {
	d.echo("tag", opts.Source, opts.Target)
	return nil
}

func (d *dryRunEngine) Login(ctx context.Context, opts cli.RegistryLoginOptions) error {
	args := []string{"login", "-u", opts.Username}
	if opts.Registry != "" {
		args = append(args, opts.Registry)
	}
	d.echo(args...)
	return nil
}

func (d *dryRunEngine) Push(ctx context.Context, ref string) (*cli.ImagePushReport, error) {
	d.echo("push", ref)
	return &cli.ImagePushReport{}, nil
}
