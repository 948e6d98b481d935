package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/kara/internal/audio"
	ffmpegbin "github.com/mgpai22/kara/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// video operations used by the CLI and server
type Processor interface {
	ExtractAudio(ctx context.Context, videoPath, outputPath string, opts audio.CompressionOptions) error
	BurnCaptions(ctx context.Context, videoPath, assPath, outputPath string, opts BurnOptions) error
	GetInfo(ctx context.Context, videoPath string) (*Info, error)
}

// options for burning captions into a video
type BurnOptions struct {
	VideoCodec string // default libx264
	Preset     string // x264 preset, default medium
	CRF        int    // 0 keeps the encoder default
}

func DefaultBurnOptions() BurnOptions {
	return BurnOptions{
		VideoCodec: "libx264",
		Preset:     "medium",
		CRF:        20,
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct{}

func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

// extracts the audio track of videoPath into outputPath
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts audio.CompressionOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if err := audio.CompressAudio(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

// BurnCaptions renders an ASS subtitle file onto the video frames. Audio is
// copied unchanged.
func (p *DefaultProcessor) BurnCaptions(
	ctx context.Context,
	videoPath, assPath, outputPath string,
	opts BurnOptions,
) error {
	for _, path := range []string{videoPath, assPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, BurnKwArgs(assPath, opts)).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg burn-in failed: %w", err)
	}
	return nil
}

// output arguments for BurnCaptions
func BurnKwArgs(assPath string, opts BurnOptions) ffmpeg.KwArgs {
	codec := opts.VideoCodec
	if codec == "" {
		codec = "libx264"
	}
	kwargs := ffmpeg.KwArgs{
		"vf":  "ass=" + escapeFilterPath(assPath),
		"c:v": codec,
		"c:a": "copy",
	}
	if opts.Preset != "" {
		kwargs["preset"] = opts.Preset
	}
	if opts.CRF > 0 {
		kwargs["crf"] = opts.CRF
	}
	return kwargs
}

// filter arguments treat ':' and '\' as syntax
func escapeFilterPath(path string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	return r.Replace(filepath.ToSlash(path))
}

type probeStreams struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// retrieves video file information with ffprobe
func (p *DefaultProcessor) GetInfo(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}
	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseInfo(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

func parseInfo(data []byte) (*Info, error) {
	var probe probeStreams
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second))
	}
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.Codec != "" {
				continue
			}
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseRate(s.AvgFrameRate)
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Codec == "" {
		return nil, fmt.Errorf("no video stream found")
	}
	return info, nil
}

// "30000/1001" -> 29.97
func parseRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
