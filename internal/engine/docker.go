// Package engine implements the container engine contract by shelling
// out to the docker CLI.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nandakiran-r/TestPiper/internal/cli"
)

type dockerEngine struct {
	binary string
}

// NewDockerEngine returns an engine backed by the docker binary on PATH.
func NewDockerEngine() cli.DockerEngine {
	return &dockerEngine{binary: "docker"}
}

// NewEngineWithBinary returns an engine backed by the named binary, for
// docker-compatible CLIs such as podman.
func NewEngineWithBinary(binary string) cli.DockerEngine {
	return &dockerEngine{binary: binary}
}

func (d *dockerEngine) Ping(ctx context.Context) (*cli.DaemonPingReport, error) {
	cmd := exec.CommandContext(ctx, d.binary, "info", "--format", "{{.ServerVersion}}")

	log.Debugf("Command being run: %+v", cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error("container daemon is not reachable: ", err)
		log.Error("Stderr: ", stderr.String())
		return &cli.DaemonPingReport{Stderr: stderr.String()}, err
	}

	log.Debugf("daemon reachable, server version %s", strings.TrimSpace(stdout.String()))
	return &cli.DaemonPingReport{Stdout: stdout.String()}, nil
}

func (d *dockerEngine) Build(ctx context.Context, opts cli.ImageBuildOptions) (*cli.ImageBuildReport, error) {
	log.Debugf("Building image %s from context %s", opts.Ref, opts.ContextDir)

	cmdArgs := []string{"build", "-t", opts.Ref}

	if opts.Dockerfile != "" {
		cmdArgs = append(cmdArgs, "-f", opts.Dockerfile)
	}

	if opts.NoCache {
		cmdArgs = append(cmdArgs, "--no-cache")
	}

	for k, v := range opts.Labels {
		cmdArgs = append(cmdArgs, "--label", k+"="+v)
	}

	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	cmdArgs = append(cmdArgs, contextDir)

	cmd := exec.CommandContext(ctx, d.binary, cmdArgs...)

	log.Debugf("Command being run: %+v", cmd)

	// Build output streams to the operator's terminal so progress is
	// visible; a copy is captured for the report.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &stdout)
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	if err := cmd.Run(); err != nil {
		log.Error(fmt.Sprintf("unable to build image %s: ", opts.Ref), err)
		return &cli.ImageBuildReport{Stderr: stderr.String()}, err
	}

	log.Debugf("Successfully built image %s", opts.Ref)
	return &cli.ImageBuildReport{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (d *dockerEngine) InspectImage(ctx context.Context, ref string) (*cli.ImageInspectReport, error) {
	cmd := exec.CommandContext(ctx, d.binary, "image", "inspect", "--format", "{{.Id}}", ref)

	log.Debugf("Command being run: %+v", cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error(fmt.Sprintf("unable to inspect image %s: ", ref), err)
		log.Error("Stderr: ", stderr.String())
		return nil, err
	}

	return &cli.ImageInspectReport{ID: strings.TrimSpace(stdout.String())}, nil
}

func (d *dockerEngine) Tag(ctx context.Context, opts cli.ImageTagOptions) error {
	log.Debugf("Tagging image %s as %s", opts.Source, opts.Target)

	cmd := exec.CommandContext(ctx, d.binary, "tag", opts.Source, opts.Target)

	log.Debugf("Command being run: %+v", cmd)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error(fmt.Sprintf("unable to tag image %s as %s: ", opts.Source, opts.Target), err)
		log.Error("Stderr: ", stderr.String())
		return err
	}

	return nil
}

func (d *dockerEngine) Login(ctx context.Context, opts cli.RegistryLoginOptions) error {
	cmdArgs := []string{"login", "-u", opts.Username}
	if opts.Registry != "" {
		cmdArgs = append(cmdArgs, opts.Registry)
	}

	cmd := exec.CommandContext(ctx, d.binary, cmdArgs...)

	log.Debugf("Command being run: %+v", cmd)

	if opts.Interactive {
		// The engine prompts for the password on the operator's terminal.
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			log.Error("registry login failed: ", err)
			return err
		}
		return nil
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error("registry login failed: ", err)
		log.Error("Stderr: ", stderr.String())
		return err
	}
	return nil
}

func (d *dockerEngine) Push(ctx context.Context, ref string) (*cli.ImagePushReport, error) {
	log.Infof("Pushing image %s", ref)

	cmd := exec.CommandContext(ctx, d.binary, "push", ref)

	log.Debugf("Command being run: %+v", cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &stdout)
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	if err := cmd.Run(); err != nil {
		log.Error(fmt.Sprintf("unable to push image %s: ", ref), err)
		return &cli.ImagePushReport{Stderr: stderr.String()}, err
	}

	log.Debugf("Successfully pushed image %s", ref)
	return &cli.ImagePushReport{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
