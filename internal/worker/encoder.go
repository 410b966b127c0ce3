package worker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
)

// ProgressFunc receives the overall encode progress in percent.
type ProgressFunc func(percent int)

type EncodeResult struct {
	// ManifestPath is the local path of the master playlist.
	ManifestPath string
	// Variants that encoded successfully, in the order they appear in the
	// master playlist.
	Variants []models.Variant
	// FailedVariants holds the names of renditions that were skipped.
	FailedVariants []string
}

// Encoder drives the external encoder subprocess. Implementations are
// swappable without touching the worker loop.
type Encoder interface {
	Transcode(ctx context.Context, inputPath, outputDir string, variants []models.Variant, onProgress ProgressFunc) (*EncodeResult, error)
}

type ffmpegEncoder struct {
	segmentDuration int
	logger          logger.Logger
}

func NewFFmpegEncoder(segmentDuration int, log logger.Logger) Encoder {
	return &ffmpegEncoder{
		segmentDuration: segmentDuration,
		logger:          log,
	}
}

// Transcode encodes one HLS rendition per variant, each in its own ffmpeg
// invocation so a failed rendition does not cost the ones that already
// succeeded. It fails outright only when every variant fails.
func (e *ffmpegEncoder) Transcode(ctx context.Context, inputPath, outputDir string, variants []models.Variant, onProgress ProgressFunc) (*EncodeResult, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("no variants configured")
	}

	duration, err := probeDuration(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	result := &EncodeResult{}
	var lastErr error
	for i, variant := range variants {
		variantIdx := i
		err := e.encodeVariant(ctx, inputPath, outputDir, variant, duration, func(fraction float64) {
			if onProgress == nil {
				return
			}
			overall := (float64(variantIdx) + fraction) / float64(len(variants)) * 100
			onProgress(int(overall))
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, transcoding.ErrBadInput) {
				return nil, err
			}
			e.logger.Warnf("variant %s failed, continuing with remaining renditions: %v", variant.Name, err)
			result.FailedVariants = append(result.FailedVariants, variant.Name)
			lastErr = err
			continue
		}
		result.Variants = append(result.Variants, variant)
	}

	if len(result.Variants) == 0 {
		return nil, errors.Wrapf(transcoding.ErrAllVariantsFailed, "last error: %v", lastErr)
	}

	manifestPath, err := WriteMasterPlaylist(outputDir, result.Variants)
	if err != nil {
		return nil, fmt.Errorf("failed to write master playlist: %w", err)
	}
	result.ManifestPath = manifestPath

	if onProgress != nil {
		onProgress(100)
	}
	return result, nil
}

func (e *ffmpegEncoder) encodeVariant(ctx context.Context, inputPath, outputDir string, variant models.Variant, duration float64, onProgress func(fraction float64)) error {
	variantDir := filepath.Join(outputDir, variant.Name)
	if err := os.MkdirAll(variantDir, 0o755); err != nil {
		return fmt.Errorf("failed to create variant dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-nostats",
		"-loglevel", "error",
		"-progress", "pipe:1",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease", variant.Width, variant.Height),
		"-c:v", "libx264",
		"-profile:v", "main",
		"-b:v", fmt.Sprintf("%dk", variant.Bitrate),
		"-maxrate", fmt.Sprintf("%dk", variant.Bitrate),
		"-bufsize", fmt.Sprintf("%dk", variant.Bitrate*2),
		"-sc_threshold", "0",
		"-g", "48",
		"-keyint_min", "48",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "48000",
		"-hls_time", strconv.Itoa(e.segmentDuration),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(variantDir, "seg_%04d.ts"),
		filepath.Join(variantDir, "playlist.m3u8"),
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		scanEncodeProgress(stdout, duration, onProgress)
	}()

	err = cmd.Wait()
	<-scanDone
	if err != nil {
		if isBadInputOutput(stderr.String()) {
			return errors.Wrapf(transcoding.ErrBadInput, "variant %s", variant.Name)
		}
		return fmt.Errorf("ffmpeg failed for variant %s: %v, stderr: %s", variant.Name, err, tailLines(stderr.String(), 10))
	}
	return nil
}

// scanEncodeProgress parses the key=value stream written by -progress pipe:1.
func scanEncodeProgress(r io.Reader, duration float64, onProgress func(fraction float64)) {
	if onProgress == nil {
		onProgress = func(float64) {}
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "out_time_ms=") {
			continue
		}
		us, err := strconv.ParseFloat(strings.TrimPrefix(line, "out_time_ms="), 64)
		if err != nil || duration <= 0 {
			continue
		}
		fraction := us / 1e6 / duration
		if fraction > 1 {
			fraction = 1
		}
		if fraction < 0 {
			fraction = 0
		}
		onProgress(fraction)
	}
}

func probeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, errors.Wrapf(transcoding.ErrBadInput, "ffprobe: %v", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, errors.Wrap(transcoding.ErrBadInput, "unreadable duration")
	}
	return duration, nil
}

// isBadInputOutput recognizes stderr signatures of corrupt or non-media
// input, which must not be retried.
func isBadInputOutput(stderr string) bool {
	for _, signature := range []string{
		"Invalid data found when processing input",
		"moov atom not found",
		"could not find codec parameters",
	} {
		if strings.Contains(stderr, signature) {
			return true
		}
	}
	return false
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
