package media

import (
	"bytes"
	"errors"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"
)

const DefaultMaxBytes int64 = 5 << 20

var (
	ErrEmpty    = errors.New("media: empty file")
	ErrTooLarge = errors.New("media: file exceeds the size limit")
	ErrNotImage = errors.New("media: file is not an image")
)

// File is an upload candidate that passed validation.
type File struct {
	Name        string
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
}

type Rejection struct {
	Name string
	Err  error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %v", r.Name, r.Err)
}

// Inspect checks that data is a decodable image no larger than maxBytes.
func Inspect(name string, data []byte, maxBytes int64) (File, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	if len(data) == 0 {
		return File{}, ErrEmpty
	}

	if int64(len(data)) > maxBytes {
		return File{}, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), maxBytes)
	}

	config, format, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/" + format
	}

	return File{
		Name:        filepath.Base(name),
		Data:        data,
		ContentType: contentType,
		Format:      format,
		Width:       config.Width,
		Height:      config.Height,
	}, nil
}

// Load reads path, refusing to buffer more than maxBytes+1 bytes.
func Load(path string, maxBytes int64) (File, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	handle, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("media: open %s: %w", path, err)
	}

	defer handle.Close()

	data, err := io.ReadAll(io.LimitReader(handle, maxBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("media: read %s: %w", path, err)
	}

	return Inspect(path, data, maxBytes)
}

// Screen validates every path item by item. Invalid members are reported
// and skipped; the valid ones are returned in input order.
func Screen(paths []string, maxBytes int64) ([]File, []Rejection) {
	var accepted []File
	var rejected []Rejection

	for _, path := range paths {
		file, err := Load(path, maxBytes)
		if err != nil {
			rejected = append(rejected, Rejection{Name: filepath.Base(path), Err: err})
			continue
		}

		accepted = append(accepted, file)
	}

	return accepted, rejected
}
