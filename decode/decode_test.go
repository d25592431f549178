package decode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img, format, err := Decode(bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 3 {
		t.Fatalf("format %s bounds %v", format, img.Bounds())
	}
	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("garbage decoded")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(path, pngBytes(t), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := File(context.Background(), path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(1, 1).RGBA(); r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Fatalf("pixel = %v %v %v", r>>8, g>>8, b>>8)
	}
	if _, err := File(context.Background(), filepath.Join(t.TempDir(), "missing.png"), 0); err == nil {
		t.Fatal("missing file opened")
	}
}

func TestFileFallsBackToFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, []byte("neither image nor video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := File(context.Background(), path, 0); err == nil {
		t.Fatal("junk decoded")
	}
}

func TestFrameRejectsNegativeIndex(t *testing.T) {
	if _, err := Frame(context.Background(), "video.mp4", -1); err == nil {
		t.Fatal("negative index accepted")
	}
}

func TestFramesFromProbe(t *testing.T) {
	tests := []struct {
		probe string
		want  int
		ok    bool
	}{
		{`{"streams":[{"codec_type":"audio"},{"codec_type":"video","nb_frames":"120"}]}`, 120, true},
		{`{"streams":[{"codec_type":"video","nb_frames":"N/A","avg_frame_rate":"30/1","duration":"2.5"}]}`, 75, true},
		{`{"streams":[{"codec_type":"video","avg_frame_rate":"0/0"}]}`, 0, false},
		{`{"streams":[]}`, 0, false},
		{`{`, 0, false},
	}
	for _, tt := range tests {
		got, err := framesFromProbe(tt.probe)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("%s: got %d, %v", tt.probe, got, err)
		}
	}
}
