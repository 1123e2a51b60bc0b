// Package pngstash is the file-level entry point for the toolkit. It
// wires the chunk engine to the filesystem: read a PNG, perform one
// operation, write the result. A file is rewritten only after the
// mutation has fully succeeded, so a failed parse never corrupts input.
package pngstash

import (
	"fmt"
	"os"

	"pngstash/internal/pngstash/ops"
	"pngstash/internal/pngstash/png"
)

// EncodeFile embeds message in a chunk of the given type and writes the
// result to outPath. An empty outPath rewrites inPath in place.
func EncodeFile(inPath, outPath, typeStr, message string) error {
	p, err := readPNG(inPath)
	if err != nil {
		return err
	}

	if _, err := ops.Encode(p, typeStr, message); err != nil {
		return err
	}

	if outPath == "" {
		outPath = inPath
	}
	if err := os.WriteFile(outPath, p.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// DecodeFile returns the hidden message stored under the given type.
func DecodeFile(path, typeStr string) (string, error) {
	p, err := readPNG(path)
	if err != nil {
		return "", err
	}
	return ops.Decode(p, typeStr)
}

// RemoveFile deletes the first chunk of the given type and rewrites the
// file in place.
func RemoveFile(path, typeStr string) error {
	p, err := readPNG(path)
	if err != nil {
		return err
	}

	if _, err := ops.Remove(p, typeStr); err != nil {
		return err
	}

	if err := os.WriteFile(path, p.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// InspectFile returns one summary per chunk, in file order.
func InspectFile(path string) ([]ops.Summary, error) {
	p, err := readPNG(path)
	if err != nil {
		return nil, err
	}
	return ops.Inspect(p), nil
}

func readPNG(path string) (*png.PNG, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p, err := png.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}
