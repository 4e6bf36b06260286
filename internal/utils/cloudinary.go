package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"educate/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// FileStorage defines the interface for hosted file operations.
type FileStorage interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
	ValidateFile(file *multipart.FileHeader) error
}

// UploadResult contains the outcome of a file upload.
type UploadResult struct {
	URL      string
	PublicID string
	Format   string
	Size     int64
}

// Errors for specific validation and transfer failures.
var (
	ErrFileTooLarge       = fmt.Errorf("file size exceeds limit")
	ErrInvalidContentType = fmt.Errorf("invalid content type")
	ErrInvalidExtension   = fmt.Errorf("invalid file extension")
	ErrMissingCredentials = fmt.Errorf("cloudinary credentials are missing")
	ErrUploadFailed       = fmt.Errorf("failed to upload file")
	ErrDeleteFailed       = fmt.Errorf("failed to delete file")
)

// allowedUploadTypes maps acceptable MIME types onto their extensions.
// Study materials are documents, slide decks, images and archives.
var allowedUploadTypes = map[string][]string{
	"image/jpeg":         {".jpg", ".jpeg"},
	"image/png":          {".png"},
	"image/gif":          {".gif"},
	"application/pdf":    {".pdf"},
	"application/msword": {".doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"application/vnd.ms-powerpoint":                                             {".ppt"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {".pptx"},
	"text/plain":                   {".txt"},
	"application/zip":              {".zip"},
	"application/x-rar-compressed": {".rar"},
	"application/vnd.rar":          {".rar"},
}

// CloudinaryService implements FileStorage against the Cloudinary API.
type CloudinaryService struct {
	client *cloudinary.Cloudinary
	config *config.CloudinaryConfig
	logger *zap.Logger

	uploadTimeout time.Duration
	deleteTimeout time.Duration
	maxRetries    uint64
}

// NewCloudinaryService builds a FileStorage backed by Cloudinary.
func NewCloudinaryService(cfg *config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryService, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{
		client:        client,
		config:        cfg,
		logger:        logger,
		uploadTimeout: 30 * time.Second,
		deleteTimeout: 10 * time.Second,
		maxRetries:    3,
	}, nil
}

// UploadFile pushes one file to the configured folder, retrying transient
// failures with exponential backoff.
func (c *CloudinaryService) UploadFile(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer src.Close()

	params := uploader.UploadParams{
		Folder:         c.config.UploadFolder,
		UseFilename:    ptrBool(true),
		UniqueFilename: ptrBool(true),
		ResourceType:   "auto",
	}

	var result *uploader.UploadResult
	operation := func() error {
		if _, seekErr := src.Seek(0, io.SeekStart); seekErr != nil {
			return backoff.Permanent(seekErr)
		}
		var opErr error
		result, opErr = c.client.Upload.Upload(ctx, src, params)
		return opErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.uploadTimeout / 2
	err = backoff.RetryNotify(
		operation,
		backoff.WithMaxRetries(b, c.maxRetries),
		func(err error, d time.Duration) {
			c.logger.Warn("Upload attempt failed",
				zap.String("filename", file.Filename),
				zap.Error(err),
				zap.Duration("backoff", d),
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrUploadFailed, c.maxRetries, err)
	}

	c.logger.Info("File uploaded",
		zap.String("filename", file.Filename),
		zap.String("public_id", result.PublicID),
		zap.Int64("size", file.Size),
		zap.Duration("duration", time.Since(start)),
	)

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Format:   result.Format,
		Size:     int64(result.Bytes),
	}, nil
}

// DeleteFile removes a hosted file by its public ID.
func (c *CloudinaryService) DeleteFile(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.deleteTimeout)
	defer cancel()

	_, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		c.logger.Error("Failed to delete file",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	c.logger.Info("File deleted", zap.String("public_id", publicID))
	return nil
}

// ValidateFile checks size, detected content type and extension before any
// bytes leave the server.
func (c *CloudinaryService) ValidateFile(file *multipart.FileHeader) error {
	if file.Size > c.config.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d bytes", ErrFileTooLarge, file.Size, c.config.MaxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read file: %w", err)
	}

	contentType := http.DetectContentType(buffer[:n])
	// DetectContentType reports charset parameters for text files.
	if idx := strings.Index(contentType, ";"); idx > 0 {
		contentType = contentType[:idx]
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))

	// Office formats are zip containers and archives sniff as octet-stream;
	// DetectContentType cannot tell them apart, so these two types fall back
	// to the declared extension.
	if contentType == "application/zip" || contentType == "application/octet-stream" {
		if extensionAllowed(ext) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrInvalidExtension, ext)
	}

	extensions, ok := allowedUploadTypes[contentType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	if !slices.Contains(extensions, ext) {
		return fmt.Errorf("%w: %s does not match content type %s", ErrInvalidExtension, ext, contentType)
	}
	return nil
}

func extensionAllowed(ext string) bool {
	for _, extensions := range allowedUploadTypes {
		if slices.Contains(extensions, ext) {
			return true
		}
	}
	return false
}

func ptrBool(b bool) *bool {
	return &b
}
