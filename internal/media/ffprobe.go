package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobeConfig holds configuration for the ffprobe prober.
type FFprobeConfig struct {
	// FFprobePath is the path to the ffprobe binary.
	// If empty, "ffprobe" will be used (assumes it's in PATH).
	FFprobePath string
}

// DefaultFFprobeConfig returns an FFprobeConfig with defaults.
func DefaultFFprobeConfig() FFprobeConfig {
	return FFprobeConfig{
		FFprobePath: "ffprobe",
	}
}

// FFprobe implements Prober using the ffprobe CLI.
type FFprobe struct {
	config FFprobeConfig
}

// Compile-time verification that FFprobe implements Prober.
var _ Prober = (*FFprobe)(nil)

// NewFFprobe creates a new ffprobe-based prober.
func NewFFprobe(cfg FFprobeConfig) *FFprobe {
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return &FFprobe{
		config: cfg,
	}
}

// Duration runs ffprobe on path and parses the container duration.
func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	if err := validateInput(path); err != nil {
		return 0, err
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, p.config.FFprobePath, buildArgs(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("probe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("ffprobe execution failed: %w", err)
	}

	return parseDuration(stdout.String())
}

// validateInput checks if the input file exists and is a regular file.
func validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", path)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", path)
	}

	return nil
}

// buildArgs prints only the format duration, without section wrappers.
func buildArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// parseDuration accepts ffprobe output such as "12.345000\n".
// Streams without a known duration print "N/A", which maps to 0.
func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, nil
	}

	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}

	return d, nil
}
