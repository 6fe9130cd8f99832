package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"stanhub/internal/config"
	"stanhub/internal/middleware"
	"stanhub/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Upload buckets keep post attachments, gallery media and avatars apart on
// disk and in public URLs.
const (
	BucketPosts   = "posts"
	BucketGallery = "gallery"
	BucketAvatars = "avatars"
)

const (
	DefaultUploadDir       = "/tmp/stanhub/uploads"
	DefaultMaxUploadSizeMB = 10
	ThumbnailMaxSize       = 480
	ThumbWebPQuality       = 75
)

// UploadService stores multipart uploads on local disk and generates a WebP
// thumbnail for gallery media. Files are named by UUID so original filenames
// never reach the filesystem.
type UploadService struct {
	uploadDir          string
	publicBaseURL      string
	maxUploadSizeBytes int64
}

func NewUploadService(cfg *config.Config) *UploadService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB
	publicBaseURL := ""

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.MaxUploadMB > 0 {
			maxUploadSizeMB = cfg.MaxUploadMB
		}
		publicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	}

	return &UploadService{
		uploadDir:          uploadDir,
		publicBaseURL:      publicBaseURL,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// SavePostImage stores a composer attachment and returns its public URL.
func (s *UploadService) SavePostImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	url, _, err := s.save(ctx, BucketPosts, file, false)
	return url, err
}

// SaveAvatar stores a profile image and returns its public URL.
func (s *UploadService) SaveAvatar(ctx context.Context, file *multipart.FileHeader) (string, error) {
	url, _, err := s.save(ctx, BucketAvatars, file, false)
	return url, err
}

// SaveGalleryMedia stores a gallery upload plus a WebP thumbnail and returns
// both public URLs.
func (s *UploadService) SaveGalleryMedia(ctx context.Context, file *multipart.FileHeader) (url, thumbURL string, err error) {
	return s.save(ctx, BucketGallery, file, true)
}

func (s *UploadService) save(ctx context.Context, bucket string, file *multipart.FileHeader, withThumb bool) (string, string, error) {
	if file == nil {
		return "", "", models.NewValidationError("No file uploaded")
	}
	if file.Size > s.maxUploadSizeBytes {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	src, err := file.Open()
	if err != nil {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewInternalError(err)
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, s.maxUploadSizeBytes+1))
	if err != nil {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewInternalError(err)
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	ext, ok := extensionForMIME(detectedType)
	if !ok {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewValidationError("Unsupported file type")
	}

	decoded, _, decodeErr := image.Decode(bytes.NewReader(content))
	if strings.HasPrefix(detectedType, "image/") && decodeErr != nil {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewValidationError("Invalid image file")
	}

	name := uuid.NewString()
	rel := filepath.ToSlash(filepath.Join(bucket, name+ext))
	if err := writeFile(filepath.Join(s.uploadDir, rel), content); err != nil {
		middleware.UploadFailures.WithLabelValues(bucket).Inc()
		return "", "", models.NewInternalError(err)
	}

	thumbURL := ""
	if withThumb && decoded != nil {
		thumbRel := filepath.ToSlash(filepath.Join(bucket, name+"_thumb.webp"))
		thumbBytes, thumbErr := encodeThumbnail(decoded)
		if thumbErr == nil {
			thumbErr = writeFile(filepath.Join(s.uploadDir, thumbRel), thumbBytes)
		}
		if thumbErr != nil {
			// A missing thumbnail degrades the gallery, it does not fail
			// the upload.
			middleware.Logger.WarnContext(ctx, "thumbnail generation failed",
				"bucket", bucket, "file", rel, "error", thumbErr)
		} else {
			thumbURL = s.publicURL(thumbRel)
		}
	}

	return s.publicURL(rel), thumbURL, nil
}

// Resolve maps a public upload URL back to its on-disk path, refusing
// anything that escapes the upload directory.
func (s *UploadService) Resolve(publicPath string) (string, error) {
	trimmed := strings.TrimPrefix(publicPath, "/uploads/")
	cleaned := filepath.Clean(trimmed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(cleaned) {
		return "", models.NewValidationError("Invalid upload path")
	}
	return filepath.Join(s.uploadDir, cleaned), nil
}

// UploadDir exposes the root for static file serving.
func (s *UploadService) UploadDir() string {
	return s.uploadDir
}

func (s *UploadService) publicURL(rel string) string {
	return s.publicBaseURL + "/uploads/" + rel
}

func encodeThumbnail(src image.Image) ([]byte, error) {
	resized := shrinkToFit(src, ThumbnailMaxSize, ThumbnailMaxSize)
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: ThumbWebPQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shrinkToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func extensionForMIME(contentType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	case "video/mp4":
		return ".mp4", true
	case "audio/mpeg":
		return ".mp3", true
	default:
		return "", false
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
