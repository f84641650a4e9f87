package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads objects to a Cloudinary folder. The key becomes
// the public id, so re-uploading an avatar replaces it in place. Without
// overwrite Cloudinary keeps the stored asset; callers use unique keys there.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: init: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, key string, r io.Reader, _ string, overwrite bool) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	folder, name := s.split(key)

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:       name,
		Folder:         folder,
		Overwrite:      api.Bool(overwrite),
		UniqueFilename: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary: upload: %w", err)
	}
	if resp.Error.Message != "" {
		if strings.Contains(strings.ToLower(resp.Error.Message), "already exists") {
			return "", ErrObjectExists
		}
		return "", errors.New("cloudinary: " + resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// PublicURL builds the delivery URL of key without contacting Cloudinary.
func (s *CloudinaryStore) PublicURL(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	folder, name := s.split(key)

	img, err := s.cld.Image(path.Join(folder, name))
	if err != nil {
		return "", fmt.Errorf("cloudinary: asset: %w", err)
	}
	img.Config.URL.Secure = true
	return img.String()
}

func (s *CloudinaryStore) split(key string) (folder, name string) {
	dir, name := path.Split(key)
	folder = strings.Trim(path.Join(s.folder, dir), "/")
	return folder, strings.TrimSuffix(name, path.Ext(name))
}
