// Package storage keeps uploaded post images. Handlers call Save with the
// multipart header and get back a public URL, or a validation error when the
// file is not an acceptable image.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/utils"
)

// ImageStore persists images and resolves them to public URLs.
type ImageStore interface {
	Save(ctx context.Context, ownerID uint, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}

var (
	ErrNoImage      = utils.NewValidation(40040, "image file is empty")
	ErrImageTooBig  = utils.NewValidation(40041, "image exceeds the upload size limit")
	ErrNotAnImage   = utils.NewValidation(40042, "only jpeg, png, gif and webp images are accepted")
	ErrBadImagePath = utils.NewValidation(40043, "image url does not belong to this store")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// New builds the store selected by cfg.UploadDriver.
func New(cfg config.AppConfig) (ImageStore, error) {
	maxBytes := int64(cfg.UploadMaxMB) * 1024 * 1024
	switch cfg.UploadDriver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, maxBytes), nil
	case "s3":
		return NewS3Store(cfg, maxBytes), nil
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", cfg.UploadDriver)
	}
}

type image struct {
	data        []byte
	contentType string
	ext         string
}

// readImage loads at most maxBytes of the upload and sniffs its content type.
func readImage(fh *multipart.FileHeader, maxBytes int64) (*image, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrNoImage
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, ErrImageTooBig
	}
	f, err := fh.Open()
	if err != nil {
		return nil, utils.Internal(50060, "failed to open upload", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, utils.Internal(50061, "failed to read upload", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooBig
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrNotAnImage
	}
	return &image{data: data, contentType: contentType, ext: ext}, nil
}

func (img *image) reader() io.ReadSeeker {
	return bytes.NewReader(img.data)
}
