package service

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"stanhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploadService(t *testing.T) *UploadService {
	t.Helper()
	return NewUploadService(&config.Config{
		UploadDir:   t.TempDir(),
		MaxUploadMB: 1,
	})
}

// pngFileHeader builds a real multipart.FileHeader carrying a PNG image of
// the given size.
func pngFileHeader(t *testing.T, w, h int) *multipart.FileHeader {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="pic.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&body, mw.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func textFileHeader(t *testing.T, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "note.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&body, mw.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func TestSavePostImage(t *testing.T) {
	svc := newTestUploadService(t)

	url, err := svc.SavePostImage(t.Context(), pngFileHeader(t, 10, 10))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/posts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	// The stored file is a UUID name, never the client filename.
	assert.NotContains(t, url, "pic.png")

	path, err := svc.Resolve(url)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveGalleryMediaWritesThumbnail(t *testing.T) {
	svc := newTestUploadService(t)

	url, thumbURL, err := svc.SaveGalleryMedia(t.Context(), pngFileHeader(t, 1200, 600))
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	require.NotEmpty(t, thumbURL)
	assert.True(t, strings.HasSuffix(thumbURL, "_thumb.webp"))

	path, err := svc.Resolve(thumbURL)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	svc := newTestUploadService(t)

	_, err := svc.SavePostImage(t.Context(), textFileHeader(t, "plain text, not an image"))
	assert.ErrorContains(t, err, "Unsupported file type")
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	svc := newTestUploadService(t)

	big := textFileHeader(t, strings.Repeat("a", 2<<20))
	_, err := svc.SavePostImage(t.Context(), big)
	assert.ErrorContains(t, err, "File too large")
}

func TestResolveRejectsTraversal(t *testing.T) {
	svc := newTestUploadService(t)

	_, err := svc.Resolve("/uploads/../../etc/passwd")
	assert.Error(t, err)

	_, err = svc.Resolve("/uploads//etc/passwd")
	assert.Error(t, err)

	path, err := svc.Resolve("/uploads/posts/abc.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "/posts/abc.png"))
}

func TestShrinkToFit(t *testing.T) {
	large := image.NewRGBA(image.Rect(0, 0, 960, 480))
	out := shrinkToFit(large, ThumbnailMaxSize, ThumbnailMaxSize)
	assert.Equal(t, 480, out.Bounds().Dx())
	assert.Equal(t, 240, out.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Equal(t, small.Bounds(), shrinkToFit(small, ThumbnailMaxSize, ThumbnailMaxSize).Bounds())
}

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mime string
		ext  string
		ok   bool
	}{
		{"image/jpeg", ".jpg", true},
		{"image/png", ".png", true},
		{"image/webp", ".webp", true},
		{"video/mp4", ".mp4", true},
		{"audio/mpeg", ".mp3", true},
		{"image/png; charset=binary", ".png", true},
		{"application/pdf", "", false},
	}
	for _, tt := range tests {
		ext, ok := extensionForMIME(tt.mime)
		assert.Equal(t, tt.ok, ok, tt.mime)
		assert.Equal(t, tt.ext, ext, tt.mime)
	}
}
