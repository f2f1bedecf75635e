package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/storage"
	"yatube/internal/validation"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// ImageDir is where post images are stored, relative to the media root.
	ImageDir = "posts"
	// ThumbDir holds the list-page thumbnails.
	ThumbDir = "posts/thumbs"

	ThumbWidth  = 960
	ThumbHeight = 339
	WebPQuality = 70
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// StoredImage is where an upload ended up. ThumbPath is empty when no
// thumbnail was produced.
type StoredImage struct {
	Path      string
	ThumbPath string
}

// ImageService stores post images and their thumbnails.
type ImageService struct {
	store      storage.Storage
	thumbnails func() bool
}

// NewImageService builds the service. thumbnails is consulted per upload;
// nil means thumbnails are always produced.
func NewImageService(store storage.Storage, thumbnails func() bool) *ImageService {
	if thumbnails == nil {
		thumbnails = func() bool { return true }
	}
	return &ImageService{store: store, thumbnails: thumbnails}
}

// Store saves the original under posts/<name> and, when enabled, a centre
// cropped WebP thumbnail under posts/thumbs/<stem>.webp. Name collisions get
// a short random suffix.
func (s *ImageService) Store(ctx context.Context, up *validation.Upload) (*StoredImage, error) {
	if up == nil || len(up.Data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}

	src, format, err := image.Decode(bytes.NewReader(up.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	name := sanitizeFileName(up.Filename, format)
	p := path.Join(ImageDir, name)
	exists, err := s.store.Exists(ctx, p)
	if err != nil {
		return nil, err
	}
	if exists {
		stem, ext := splitExt(name)
		p = path.Join(ImageDir, stem+"_"+uuid.NewString()[:7]+ext)
	}

	contentType := decodedFormatToMime(format)
	if contentType == "" {
		contentType = http.DetectContentType(up.Data)
	}
	objects := []storage.Object{{Path: p, ContentType: contentType, Data: up.Data}}
	out := &StoredImage{Path: p}

	if s.thumbnails() {
		thumb, err := encodeWebP(thumbnail(src, ThumbWidth, ThumbHeight), WebPQuality)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "thumbnail encoding failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			out.ThumbPath = ThumbnailPath(p)
			objects = append(objects, storage.Object{Path: out.ThumbPath, ContentType: "image/webp", Data: thumb})
		}
	}

	if err := s.store.SaveAll(ctx, objects); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return out, nil
}

// Delete removes an image and its thumbnail, ignoring a missing thumbnail.
func (s *ImageService) Delete(ctx context.Context, imagePath string) error {
	if imagePath == "" {
		return nil
	}
	if err := s.store.Delete(ctx, imagePath); err != nil {
		return err
	}
	return s.store.Delete(ctx, ThumbnailPath(imagePath))
}

// URL returns the public address of a stored image.
func (s *ImageService) URL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	return s.store.URL(imagePath)
}

// ThumbnailPath maps posts/<stem>.<ext> to posts/thumbs/<stem>.webp.
func ThumbnailPath(imagePath string) string {
	stem, _ := splitExt(path.Base(imagePath))
	return path.Join(ThumbDir, stem+".webp")
}

func splitExt(name string) (string, string) {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

func sanitizeFileName(name, format string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	stem, ext := splitExt(name)
	if stem == "" {
		stem = "image"
	}
	if ext == "" {
		ext = "." + formatExt(format)
	}
	if len(stem) > 80 {
		stem = stem[:80]
	}
	return stem + strings.ToLower(ext)
}

func formatExt(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	if format == "" {
		return "bin"
	}
	return format
}

// thumbnail centre crops src to the w:h aspect ratio and scales it to w×h.
func thumbnail(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw <= 0 || sh <= 0 {
		return src
	}

	cropW, cropH := sw, sw*h/w
	if cropH > sh {
		cropW, cropH = sh*w/h, sh
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}
	x := b.Min.X + (sw-cropW)/2
	y := b.Min.Y + (sh-cropH)/2

	cropped := cropToRect(src, x, y, cropW, cropH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), xdraw.Over, nil)
	return dst
}

func cropToRect(src image.Image, x, y, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
