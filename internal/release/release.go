// Package release implements the image build-tag-push workflow: verify
// the container daemon is reachable, build the image, attach registry
// tags, authenticate, and publish each tag. Control flows strictly
// forward; the first failing stage aborts the run with no retry and no
// rollback.
package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/nandakiran-r/TestPiper/artifacts"
	"github.com/nandakiran-r/TestPiper/internal/cli"
	"github.com/nandakiran-r/TestPiper/internal/log"
)

const ReceiptFilename = "release-receipt.json"

// Plan is the set of registry references a release run will create and
// push, in push order.
type Plan struct {
	Username string
	Image    string
	Version  string
	// Refs always starts with the floating latest tag. A version ref
	// follows only when a version was supplied.
	Refs []string
}

// NewPlan computes the references for a release. The latest tag is
// always produced. A version tag is added only when version is
// non-empty and differs from the literal "latest": passing "latest"
// explicitly behaves exactly like omitting the version, so no duplicate
// push is ever attempted.
func NewPlan(username, image, version string) Plan {
	base := username + "/" + image

	refs := []string{base + ":latest"}

	v := strings.TrimSpace(version)
	if v != "" && v != "latest" {
		refs = append(refs, base+":"+v)
	}

	return Plan{
		Username: username,
		Image:    image,
		Version:  v,
		Refs:     refs,
	}
}

// BaseRef is the reference the build output is tagged with directly.
func (p Plan) BaseRef() string {
	return p.Refs[0]
}

// Receipt records what a release run produced.
type Receipt struct {
	ID         string    `json:"id"`
	Image      string    `json:"image"`
	ImageID    string    `json:"image_id"`
	Refs       []string  `json:"refs"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Recorder persists a receipt once a run has fully succeeded.
type Recorder interface {
	Record(ctx context.Context, receipt Receipt) error
}

// Runner executes a Plan against a container engine. A Runner is a
// single sequential actor: no stage runs concurrently with another, and
// cancellation happens only through ctx.
type Runner struct {
	plan       Plan
	engine     cli.DockerEngine
	dockerfile string
	contextDir string
	noCache    bool
	recorder   Recorder
	now        func() time.Time
}

type RunnerOption func(*Runner)

// WithDockerfile overrides the engine's default build instructions path.
func WithDockerfile(path string) RunnerOption {
	return func(r *Runner) {
		r.dockerfile = path
	}
}

// WithContextDir sets the build context directory.
func WithContextDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.contextDir = dir
	}
}

// WithNoCache disables the engine build cache.
func WithNoCache(noCache bool) RunnerOption {
	return func(r *Runner) {
		r.noCache = noCache
	}
}

// WithRecorder registers a Recorder for successful runs.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

func NewRunner(plan Plan, engine cli.DockerEngine, opts ...RunnerOption) *Runner {
	r := &Runner{
		plan:   plan,
		engine: engine,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run walks the five stages in order and returns the receipt of a fully
// successful run. Any stage error aborts the remaining stages and is
// returned wrapped with the stage name; no recovery is attempted.
func (r *Runner) Run(ctx context.Context) (*Receipt, error) {
	logger := logr.FromContextOrDiscard(ctx)
	startedAt := r.now()

	// Stage 1: daemon check. Failing here guarantees no image was
	// created.
	if _, err := r.engine.Ping(ctx); err != nil {
		return nil, fmt.Errorf("daemon check: %w", err)
	}

	// Stage 2: build, tagged directly with the latest ref.
	logger.Info("building image", "ref", r.plan.BaseRef())
	if _, err := r.engine.Build(ctx, cli.ImageBuildOptions{
		Ref:        r.plan.BaseRef(),
		Dockerfile: r.dockerfile,
		ContextDir: r.contextDir,
		NoCache:    r.noCache,
	}); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	// The local image must exist before tagging; resolve its ID now so
	// the receipt can pin what the tags point at.
	inspect, err := r.engine.InspectImage(ctx, r.plan.BaseRef())
	if err != nil {
		return nil, fmt.Errorf("build: image %s missing after build: %w", r.plan.BaseRef(), err)
	}

	// Stage 3: attach the remaining refs. A tag is a label on the build
	// output, not a copy.
	for _, ref := range r.plan.Refs[1:] {
		logger.V(log.DBG).Info("tagging image", "source", r.plan.BaseRef(), "target", ref)
		if err := r.engine.Tag(ctx, cli.ImageTagOptions{
			Source: r.plan.BaseRef(),
			Target: ref,
		}); err != nil {
			return nil, fmt.Errorf("tag: %w", err)
		}
	}

	// Stage 4: interactive registry login.
	if err := r.engine.Login(ctx, cli.RegistryLoginOptions{
		Username:    r.plan.Username,
		Interactive: true,
	}); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	// Stage 5: publish every ref, latest first.
	for _, ref := range r.plan.Refs {
		if _, err := r.engine.Push(ctx, ref); err != nil {
			return nil, fmt.Errorf("push %s: %w", ref, err)
		}
	}

	receipt := Receipt{
		ID:         uuid.NewString(),
		Image:      r.plan.Image,
		ImageID:    inspect.ID,
		Refs:       r.plan.Refs,
		StartedAt:  startedAt,
		FinishedAt: r.now(),
	}

	if err := r.finalize(ctx, receipt); err != nil {
		return nil, err
	}

	logger.Info("release complete", "refs", receipt.Refs, "image_id", receipt.ImageID)
	return &receipt, nil
}

// finalize writes the receipt artifact and records the run. Both are
// post-success bookkeeping, but a failure here still fails the run so
// the operator notices the missing record.
func (r *Runner) finalize(ctx context.Context, receipt Receipt) error {
	if aw := artifacts.WriterFromContext(ctx); aw != nil {
		contents, err := json.MarshalIndent(receipt, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal receipt: %w", err)
		}
		if _, err := aw.WriteFile(ReceiptFilename, bytes.NewReader(contents)); err != nil {
			return fmt.Errorf("write receipt: %w", err)
		}
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, receipt); err != nil {
			return fmt.Errorf("record release: %w", err)
		}
	}

	return nil
}
