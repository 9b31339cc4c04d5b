package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads photos to a Cloudinary folder. Cloudinary picks the
// content type itself and serves every upload publicly over its CDN.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ Store = (*CloudinaryStore)(nil)

func NewCloudinary(cloudinaryURL string, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		Folder:    s.folder,
		PublicID:  strings.TrimSuffix(key, path.Ext(key)),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w, key: %s", err, key)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s, key: %s", resp.Error.Message, key)
	}

	return resp.SecureURL, nil
}
