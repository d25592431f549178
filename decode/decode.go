// Package decode turns image files, or single frames of video files, into
// pixel buffers.
package decode

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/gen2brain/avif"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads a still image in any registered format
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", errors.Wrap(err, "decode image")
	}
	return img, format, nil
}

// File decodes path as a still image. Files no image decoder recognizes are
// handed to ffmpeg, which extracts frame index.
func File(ctx context.Context, path string, frame int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	img, _, err := image.Decode(bufio.NewReader(f))
	f.Close()
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, image.ErrFormat) {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return Frame(ctx, path, frame)
}

// Frame extracts a single frame of a video as PNG through ffmpeg
func Frame(ctx context.Context, path string, index int) (image.Image, error) {
	if index < 0 {
		return nil, errors.Errorf("frame index %d is negative", index)
	}
	if total, err := FrameCount(path); err == nil && total > 0 && index >= total {
		return nil, errors.Errorf("frame %d out of range, video has %d frames", index, total)
	}

	var buf bytes.Buffer
	cmd := ffmpeg.Input(path).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "image2pipe",
			"vcodec":  "png",
			"vf":      fmt.Sprintf("select=eq(n\\,%d)", index),
			"vframes": 1,
		}).
		WithOutput(&buf).
		WithErrorOutput(io.Discard)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "ffmpeg frame %d of %s", index, path)
	}
	if buf.Len() == 0 {
		return nil, errors.Errorf("no frame %d extracted from %s", index, path)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, errors.Wrapf(err, "decode frame %d", index)
	}
	return img, nil
}

// videoProbe keeps only what frame counting needs
type videoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		NbFrames     string `json:"nb_frames"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// FrameCount asks ffprobe for the number of frames in the first video stream
func FrameCount(path string) (int, error) {
	probe, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, errors.Wrap(err, "ffprobe")
	}
	return framesFromProbe(probe)
}

// framesFromProbe reads nb_frames, or estimates it from frame rate and duration
func framesFromProbe(probeJSON string) (int, error) {
	var probe videoProbe
	if err := json.Unmarshal([]byte(probeJSON), &probe); err != nil {
		return 0, errors.Wrap(err, "parse ffprobe output")
	}
	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			return n, nil
		}
		num, den, ok := strings.Cut(s.AvgFrameRate, "/")
		if !ok {
			continue
		}
		fn, err1 := strconv.ParseFloat(num, 64)
		fd, err2 := strconv.ParseFloat(den, 64)
		dur, err3 := strconv.ParseFloat(s.Duration, 64)
		if err1 == nil && err2 == nil && err3 == nil && fd != 0 {
			return int(fn / fd * dur), nil
		}
	}
	return 0, errors.New("no video stream found or cannot determine frame count")
}
