package pngstash

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"os"
	"path/filepath"
	"testing"

	"pngstash/internal/pngstash/png"
)

// writeTestPNG encodes a small image with the standard library and
// writes it to a file in a fresh temp directory.
func writeTestPNG(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 64), G: uint8(y * 64), B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatalf("encoding image: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestEncodeDecodeFile(t *testing.T) {
	path := writeTestPNG(t)

	if err := EncodeFile(path, "", "ruSt", "hello from disk"); err != nil {
		t.Fatalf("encoding file: %v", err)
	}

	message, err := DecodeFile(path, "ruSt")
	if err != nil {
		t.Fatalf("decoding file: %v", err)
	}
	if message != "hello from disk" {
		t.Errorf("message: got %q want %q", message, "hello from disk")
	}
}

func TestEncodeFileSeparateOutput(t *testing.T) {
	in := writeTestPNG(t)
	out := filepath.Join(filepath.Dir(in), "out.png")

	before, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("reading input: %v", err)
	}

	if err := EncodeFile(in, out, "ruSt", "copied"); err != nil {
		t.Fatalf("encoding file: %v", err)
	}

	// Input is untouched when an output path is given.
	after, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("re-reading input: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("input file was modified")
	}

	message, err := DecodeFile(out, "ruSt")
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if message != "copied" {
		t.Errorf("message: got %q want %q", message, "copied")
	}
}

func TestRemoveFile(t *testing.T) {
	path := writeTestPNG(t)

	if err := EncodeFile(path, "", "ruSt", "short lived"); err != nil {
		t.Fatalf("encoding file: %v", err)
	}
	if err := RemoveFile(path, "ruSt"); err != nil {
		t.Fatalf("removing chunk: %v", err)
	}

	if _, err := DecodeFile(path, "ruSt"); !errors.Is(err, png.ErrChunkNotFound) {
		t.Errorf("expected ErrChunkNotFound, got %v", err)
	}
}

func TestRemoveFileNotFoundKeepsFile(t *testing.T) {
	path := writeTestPNG(t)

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}

	if err := RemoveFile(path, "zzZz"); !errors.Is(err, png.ErrChunkNotFound) {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("re-reading file: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("failed removal rewrote the file")
	}
}

func TestInspectFile(t *testing.T) {
	path := writeTestPNG(t)

	summaries, err := InspectFile(path)
	if err != nil {
		t.Fatalf("inspecting file: %v", err)
	}

	if len(summaries) < 3 {
		t.Fatalf("summary count: got %d want at least 3", len(summaries))
	}
	if summaries[0].Type != "IHDR" {
		t.Errorf("first chunk: got %q want IHDR", summaries[0].Type)
	}
	if summaries[len(summaries)-1].Type != "IEND" {
		t.Errorf("last chunk: got %q want IEND", summaries[len(summaries)-1].Type)
	}
}

func TestNotAPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.png")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	if _, err := InspectFile(path); !errors.Is(err, png.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}
