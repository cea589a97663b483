package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	return buf.Bytes()
}

func TestInspectAcceptsImages(t *testing.T) {
	file, err := Inspect("dir/pic.png", pngBytes(t), DefaultMaxBytes)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	if file.Name != "pic.png" || file.Format != "png" || file.ContentType != "image/png" {
		t.Fatalf("unexpected file %+v", file)
	}

	if file.Width != 4 || file.Height != 3 {
		t.Fatalf("unexpected size %dx%d", file.Width, file.Height)
	}
}

func TestInspectRejections(t *testing.T) {
	if _, err := Inspect("a.txt", []byte("hello there"), DefaultMaxBytes); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}

	if _, err := Inspect("a.png", pngBytes(t), 10); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	if _, err := Inspect("a.png", nil, DefaultMaxBytes); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestScreenContinuesPastInvalidMembers(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "bad.txt")

	if err := os.WriteFile(good, pngBytes(t), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	accepted, rejected := Screen([]string{bad, good, filepath.Join(dir, "missing.png")}, DefaultMaxBytes)

	if len(accepted) != 1 || accepted[0].Name != "good.png" {
		t.Fatalf("unexpected accepted %+v", accepted)
	}

	if len(rejected) != 2 || rejected[0].Name != "bad.txt" {
		t.Fatalf("unexpected rejected %+v", rejected)
	}
}
