package utils

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/dondesang/appdon/models"
	"github.com/google/uuid"
)

// FileStore keeps donors' analysis files.
type FileStore interface {
	Save(ctx context.Context, owner uuid.UUID, name, contentType string, size int64, r io.Reader) (models.Attachment, error)
}

// MemoryFiles only records the file reference. The bytes are not kept.
type MemoryFiles struct {
	Now func() time.Time
}

func (m MemoryFiles) Save(_ context.Context, _ uuid.UUID, name, contentType string, size int64, _ io.Reader) (models.Attachment, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return models.Attachment{Name: name, Size: size, ContentType: contentType, UploadedAt: now()}, nil
}

// CloudinaryFiles uploads analysis files to Cloudinary and keeps the secure URL.
type CloudinaryFiles struct {
	cld    *cloudinary.Cloudinary
	preset string
	folder string
}

func NewCloudinaryFiles(cloudName, apiKey, apiSecret, preset, folder string) (*CloudinaryFiles, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryFiles{cld: cld, preset: preset, folder: folder}, nil
}

func (c *CloudinaryFiles) Save(ctx context.Context, owner uuid.UUID, name, contentType string, size int64, r io.Reader) (models.Attachment, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     owner.String() + "-" + time.Now().Format("20060102150405"),
		Folder:       c.folder,
		UploadPreset: c.preset,
		ResourceType: "auto",
	})
	if err != nil {
		return models.Attachment{}, fmt.Errorf("upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return models.Attachment{}, fmt.Errorf("upload to cloudinary: %s", resp.Error.Message)
	}
	return models.Attachment{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		URL:         resp.SecureURL,
		UploadedAt:  time.Now(),
	}, nil
}
