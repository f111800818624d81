package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"sharenest-backend/config"
)

// UploadedImage is the result of pushing one image to the CDN.
type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageStore abstracts the image CDN so tests can swap in a double.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, subfolder string) (UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStore is the production ImageStore.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cfg config.App) (*CloudinaryStore, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}
	client, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStore{client: client, folder: cfg.CloudinaryFolder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, subfolder string) (UploadedImage, error) {
	publicID := uuid.NewString()
	folder := s.folder
	if subfolder != "" {
		folder = folder + "/" + subfolder
	}

	resp, err := s.client.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   folder,
		PublicID: publicID,
	})
	if err != nil {
		return UploadedImage{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}

	return UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	return nil
}
