package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sseth345/srilanka-learning-platform/pkg/cloudinary"
)

// sniffLength matches the mimetype library's default read limit.
const sniffLength = 3072

// FileStorage stores documents and images and returns a public URL.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// VideoStorage hosts video lessons.
type VideoStorage interface {
	UploadVideo(ctx context.Context, name string, reader io.Reader) (cloudinary.Asset, error)
	DestroyVideo(ctx context.Context, publicID string) error
	StreamURL(publicID string) string
	ThumbnailURL(publicID string) string
}

type upload struct {
	name   string
	mime   string
	size   int64
	reader io.Reader
	closer io.Closer
}

func (u *upload) Close() error {
	return u.closer.Close()
}

// openUpload checks the declared size, sniffs the content type from the first bytes and
// returns a reader that replays them.
func openUpload(file *multipart.FileHeader, maxBytes int64, allowed func(string) bool) (*upload, error) {
	if file == nil {
		return nil, ErrFileRequired
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return nil, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(handle, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = handle.Close()
		return nil, err
	}
	head = head[:n]

	detected := normalizeMime(mimetype.Detect(head).String())
	if !allowed(detected) {
		_ = handle.Close()
		return nil, ErrUploadTypeNotAllowed
	}

	reader := io.MultiReader(bytes.NewReader(head), handle)
	if maxBytes > 0 {
		reader = io.LimitReader(reader, maxBytes)
	}

	return &upload{
		name:   strings.TrimSpace(file.Filename),
		mime:   detected,
		size:   file.Size,
		reader: reader,
		closer: handle,
	}, nil
}

func normalizeMime(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}

func isVideoMime(value string) bool {
	return strings.HasPrefix(value, "video/")
}

func isImageMime(value string) bool {
	return strings.HasPrefix(value, "image/")
}

func isPDFMime(value string) bool {
	return value == "application/pdf"
}

func isDocumentMime(value string) bool {
	switch {
	case isPDFMime(value), isImageMime(value), value == "text/plain", value == "application/msword":
		return true
	case strings.HasPrefix(value, "application/vnd.openxmlformats-officedocument."):
		return true
	case strings.HasPrefix(value, "application/vnd.oasis.opendocument."):
		return true
	default:
		return false
	}
}

func megabytes(mb int) int64 {
	if mb <= 0 {
		return 0
	}
	return int64(mb) * 1024 * 1024
}
