// Package storage puts user uploads (avatars, service photos) behind a
// single Store interface backed by local disk or Cloudinary.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxUploadSize = 5 << 20

var (
	ErrObjectExists    = errors.New("object already exists")
	ErrUnsupportedType = errors.New("only jpeg, png and webp images are accepted")
	ErrTooLarge        = errors.New("file exceeds the 5 MB limit")
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidKey      = errors.New("invalid object key")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store saves an object under key and returns its public URL. Without
// overwrite an existing key fails with ErrObjectExists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string, overwrite bool) (string, error)
	PublicURL(key string) (string, error)
}

// Image is a validated upload ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

func (img *Image) Reader() io.Reader { return bytes.NewReader(img.Data) }

// ReadImage loads a multipart file and checks its size and sniffed type.
// The declared Content-Type header is ignored.
func ReadImage(fh *multipart.FileHeader) (*Image, error) {
	if fh == nil {
		return nil, ErrEmptyFile
	}
	if fh.Size > MaxUploadSize {
		return nil, ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return readImage(f)
}

func readImage(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	for ct, ext := range allowedTypes {
		if mtype.Is(ct) {
			return &Image{Data: data, ContentType: ct, Ext: ext}, nil
		}
	}
	return nil, ErrUnsupportedType
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func AvatarKey(userID int64) string {
	return fmt.Sprintf("avatars/%d", userID)
}

func ServiceImageKey(serviceID int64, name string) string {
	return fmt.Sprintf("services/%d/%s", serviceID, name)
}
