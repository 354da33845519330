// Package videodoc converts video files to Markdown by sampling frames
// with ffmpeg and running OCR on each one.
//
// Frames are sampled at a fixed interval, recognized, and deduplicated:
// a frame whose text is nearly identical to the previous frame's is
// dropped, so a static slide held for a minute produces one entry
// rather than twelve. Both ffmpeg and ffprobe must be installed, and
// the binary must be built with the "ocr" tag.
package videodoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/babissal/filetomd/ocr"
	"github.com/babissal/filetomd/preprocess"
)

const defaultFrameInterval = 5 * time.Second

// ErrNoVideoStream is returned when the file contains no video stream.
var ErrNoVideoStream = errors.New("videodoc: no video stream found")

// Config holds the options for a video converter.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger

	// Languages are Tesseract language codes passed to the OCR engine.
	Languages []string

	// FrameInterval is the time between sampled frames. Defaults to
	// five seconds.
	FrameInterval time.Duration
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = defaultFrameInterval
	}
}

// Converter converts video files to Markdown.
type Converter struct {
	logger    *slog.Logger
	languages []string
	interval  time.Duration
	pipeline  preprocess.Pipeline
}

// New creates a video converter. Frames are preprocessed with the
// basic pipeline, trading some accuracy for throughput.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{
		logger:    cfg.Logger,
		languages: cfg.Languages,
		interval:  cfg.FrameInterval,
		pipeline:  preprocess.New(preprocess.Basic),
	}
}

type videoInfo struct {
	duration float64
	width    int
	height   int
	fps      float64
}

type frame struct {
	at   float64
	text string
}

// Convert samples frames from the video at path and returns a Markdown
// document with the recognized text per timestamp.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	engine, err := ocr.New(c.languages...)
	if err != nil {
		return "", fmt.Errorf("failed to initialize ocr: %w", err)
	}
	defer engine.Close()

	info, err := probe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to probe video: %w", err)
	}

	dir, err := os.MkdirTemp("", "videodoc-")
	if err != nil {
		return "", fmt.Errorf("failed to create frame dir: %w", err)
	}
	defer os.RemoveAll(dir)

	paths, err := extractFrames(ctx, path, dir, c.interval)
	if err != nil {
		return "", fmt.Errorf("failed to extract frames: %w", err)
	}
	c.logger.Debug("sampled frames", "path", path, "count", len(paths))

	var frames []frame
	var prev string
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := c.recognizeFrame(engine, p)
		if err != nil {
			return "", err
		}
		if text != "" && isDuplicate(prev, text) {
			continue
		}

		frames = append(frames, frame{at: float64(i) * c.interval.Seconds(), text: text})
		if text != "" {
			prev = text
		}
	}

	markdown := render(filepath.Base(path), info, frames)
	c.logger.Debug("converted video", "path", path, "frames", len(frames))
	return markdown, nil
}

func (c *Converter) recognizeFrame(engine *ocr.Engine, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read frame: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode frame: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.pipeline.Process(img)); err != nil {
		return "", fmt.Errorf("failed to encode frame for ocr: %w", err)
	}
	text, err := engine.Recognize(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to recognize frame text: %w", err)
	}
	return text, nil
}

// probe reads the video metadata with ffprobe.
func probe(ctx context.Context, path string) (videoInfo, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path).Output()
	if err != nil {
		return videoInfo{}, err
	}

	var data struct {
		Streams []struct {
			CodecType    string `json:"codec_type"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &data); err != nil {
		return videoInfo{}, fmt.Errorf("unexpected ffprobe output: %w", err)
	}

	info := videoInfo{fps: 30}
	info.duration, _ = strconv.ParseFloat(data.Format.Duration, 64)
	for _, s := range data.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.width, info.height = s.Width, s.Height
		if fps := parseFrameRate(s.AvgFrameRate); fps > 0 {
			info.fps = fps
		}
		return info, nil
	}
	return videoInfo{}, ErrNoVideoStream
}

// parseFrameRate parses ffprobe's fractional frame rate ("30000/1001").
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// extractFrames samples one frame per interval into dir and returns
// the frame paths in timestamp order.
func extractFrames(ctx context.Context, path, dir string, interval time.Duration) ([]string, error) {
	err := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf("fps=1/%g", interval.Seconds()),
		filepath.Join(dir, "frame_%06d.png")).Run()
	if err != nil {
		return nil, err
	}
	return filepath.Glob(filepath.Join(dir, "frame_*.png"))
}

// formatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func formatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := total % 3600 / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func render(name string, info videoInfo, frames []frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Video: %s\n\n", name)
	fmt.Fprintf(&b, "**Duration:** %s | **Resolution:** %dx%d | **FPS:** %.1f | **Frames Analyzed:** %d\n\n",
		formatDuration(info.duration), info.width, info.height, info.fps, len(frames))

	switch {
	case len(frames) == 0:
		b.WriteString("*No frames could be extracted from this video.*")
	case !anyText(frames):
		b.WriteString("*No text detected in any extracted frame.*")
	default:
		b.WriteString("## Extracted Text by Timestamp\n")
		for _, f := range frames {
			fmt.Fprintf(&b, "\n### [%s]\n\n", formatDuration(f.at))
			if f.text != "" {
				b.WriteString(f.text + "\n")
			} else {
				b.WriteString("*No text detected.*\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func anyText(frames []frame) bool {
	for _, f := range frames {
		if f.text != "" {
			return true
		}
	}
	return false
}
