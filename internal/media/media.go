// Package media downloads quote images and re-hosts them on our own storage.
package media

import (
	"context"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/go-scripts/quotes/internal/crawler"
)

// FetchTimeout bounds a single image download.
const FetchTimeout = 10 * time.Second

// Image is a downloaded image.
type Image struct {
	Data        []byte
	ContentType string
	// Ext is the file extension including the dot.
	Ext string
}

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client *resty.Client
	log    *log.Logger
}

// NewFetcher creates a Fetcher that identifies itself with userAgent.
func NewFetcher(userAgent string) *Fetcher {
	client := resty.New().
		SetTimeout(FetchTimeout).
		SetHeader("Accept", "image/*")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &Fetcher{client: client, log: log.WithPrefix("media")}
}

// Fetch downloads url. Any failure is logged and reported as false.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Image, bool) {
	if url == "" {
		return nil, false
	}

	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		f.log.Error("image download failed", "url", url, "err", err)
		return nil, false
	}
	if res.StatusCode() != http.StatusOK {
		f.log.Warn("image download failed", "url", url, "status", res.StatusCode())
		return nil, false
	}

	contentType := res.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Image{
		Data:        res.Body(),
		ContentType: contentType,
		Ext:         extension(url, contentType),
	}, true
}

var imageExts = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/avif":    ".avif",
	"image/svg+xml": ".svg",
}

// extension picks the file extension from the content type, then from the
// URL path, and falls back to .jpg.
func extension(url, contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := imageExts[mt]; ok {
			return ext
		}
	}
	p := url
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".png", ".gif", ".webp", ".avif", ".svg":
		return ext
	}
	return ".jpg"
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, topic string, img *Image) (string, bool)
}

// ObjectPath returns the storage path for a new image of topic.
func ObjectPath(topic, ext string) string {
	return crawler.NormalizeTopic(topic) + "/" + uuid.NewString() + ext
}

// Rehoster replaces source image URLs with copies on our storage.
type Rehoster struct {
	fetcher  *Fetcher
	uploader Uploader
	log      *log.Logger
}

func NewRehoster(fetcher *Fetcher, uploader Uploader) *Rehoster {
	return &Rehoster{fetcher: fetcher, uploader: uploader, log: log.WithPrefix("media")}
}

// Rehost returns the public URL of a copy of src, or src itself when the copy
// could not be made.
func (r *Rehoster) Rehost(ctx context.Context, topic, src string) string {
	img, ok := r.fetcher.Fetch(ctx, src)
	if !ok {
		return src
	}
	public, ok := r.uploader.Upload(ctx, topic, img)
	if !ok {
		return src
	}
	r.log.Debug("image re-hosted", "src", src, "url", public)
	return public
}
