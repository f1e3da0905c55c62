package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const maxStderrBytes = 512

// FFmpeg extracts audio tracks with the ffmpeg binary.
type FFmpeg struct {
	path string
}

func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}

	return &FFmpeg{path: path}
}

func (f *FFmpeg) ExtractAudio(ctx context.Context, inPath string, outPath string) error {
	cmd := exec.CommandContext(ctx, f.path, Args(inPath, outPath)...) //nolint:gosec // Arguments are file paths.

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", f.path, err, tail(stderr.String(), maxStderrBytes))
	}

	return nil
}

// Args returns the ffmpeg arguments producing mono 16 kHz PCM16 WAV.
func Args(inPath string, outPath string) []string {
	return []string{
		"-i", inPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outPath,
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}

	return s[len(s)-n:]
}
