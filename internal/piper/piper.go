// Package piper wraps the external Piper text-to-speech engine. The
// engine and its ONNX model are consumed as prebuilt artifacts; nothing
// here synthesizes audio itself.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const DefaultBinary = "piper"

// wavHeaderSize is the minimum size of a non-empty WAV stream; output
// at or below this produced no audio.
const wavHeaderSize = 44

var (
	ErrModelNotFound  = errors.New("voice model not found")
	ErrConfigNotFound = errors.New("voice model config not found")
	ErrNoAudio        = errors.New("synthesis produced no audio")
)

// runFunc invokes the engine binary with text on stdin, writing WAV
// output to outPath. Tests substitute this to avoid the real binary.
type runFunc func(ctx context.Context, binary, modelPath, configPath, text, outPath string) error

// Voice is a loaded Piper voice: a `.onnx` model and its `.onnx.json`
// config, synthesized through the engine binary.
type Voice struct {
	modelPath  string
	configPath string
	binary     string
	fs         afero.Fs
	run        runFunc
}

type VoiceOption func(*Voice)

// WithBinary points the voice at a specific engine binary.
func WithBinary(binary string) VoiceOption {
	return func(v *Voice) {
		if binary != "" {
			v.binary = binary
		}
	}
}

// WithFs sets the filesystem used for model lookups. Tests use this
// with an in-memory fs.
func WithFs(fs afero.Fs) VoiceOption {
	return func(v *Voice) {
		v.fs = fs
	}
}

// WithRunner overrides engine invocation. Tests only.
func WithRunner(run runFunc) VoiceOption {
	return func(v *Voice) {
		v.run = run
	}
}

// Load validates that the model pair exists and returns a usable Voice.
// The config is expected alongside the model as <model>.json.
func Load(modelPath string, opts ...VoiceOption) (*Voice, error) {
	v := &Voice{
		modelPath:  modelPath,
		configPath: modelPath + ".json",
		binary:     DefaultBinary,
		fs:         afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(v)
	}
	if v.run == nil {
		v.run = runPiper
	}

	if exists, err := afero.Exists(v.fs, v.modelPath); err != nil || !exists {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, v.modelPath)
	}
	if exists, err := afero.Exists(v.fs, v.configPath); err != nil || !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, v.configPath)
	}

	log.Debugf("Loaded voice model %s", v.modelPath)
	return v, nil
}

// ModelPath is the path of the loaded `.onnx` model.
func (v *Voice) ModelPath() string {
	return v.modelPath
}

// Synthesize renders text to WAV bytes through the engine binary.
func (v *Voice) Synthesize(ctx context.Context, text string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "piper-*.wav")
	if err != nil {
		return nil, fmt.Errorf("could not create synthesis output file: %w", err)
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	if err := v.run(ctx, v.binary, v.modelPath, v.configPath, text, outPath); err != nil {
		return nil, err
	}

	wav, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("could not read synthesis output: %w", err)
	}

	// A bare header means the engine ran but emitted no frames.
	if len(wav) <= wavHeaderSize {
		return nil, ErrNoAudio
	}

	return wav, nil
}

func runPiper(ctx context.Context, binary, modelPath, configPath, text, outPath string) error {
	cmd := exec.CommandContext(ctx, binary,
		"--model", modelPath,
		"--config", configPath,
		"--output_file", outPath,
	)
	cmd.Stdin = strings.NewReader(text)

	log.Debugf("Command being run: %+v", cmd)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		log.Error("synthesis failed: ", err)
		log.Error("Output: ", output.String())
		return fmt.Errorf("piper: %w: %s", err, output.String())
	}

	return nil
}
