package media

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

// SupabaseUploader writes images to a Supabase Storage bucket through its REST
// API, authenticating with a service key.
type SupabaseUploader struct {
	client  *resty.Client
	baseURL string
	bucket  string
	log     *log.Logger
}

func NewSupabaseUploader(baseURL, key, bucket string) *SupabaseUploader {
	client := resty.New().
		SetTimeout(30*time.Second).
		SetAuthToken(key).
		SetHeader("apikey", key)
	return &SupabaseUploader{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bucket:  bucket,
		log:     log.WithPrefix("supabase"),
	}
}

// PublicURL is the anonymous download URL of an object.
func (u *SupabaseUploader) PublicURL(objectPath string) string {
	return u.baseURL + "/storage/v1/object/public/" + u.bucket + "/" + objectPath
}

func (u *SupabaseUploader) Upload(ctx context.Context, topic string, img *Image) (string, bool) {
	objectPath := ObjectPath(topic, img.Ext)

	res, err := u.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", img.ContentType).
		SetHeader("x-upsert", "true").
		SetBody(img.Data).
		Post(u.baseURL + "/storage/v1/object/" + u.bucket + "/" + objectPath)
	if err != nil {
		u.log.Error("upload failed", "path", objectPath, "err", err)
		return "", false
	}
	if res.StatusCode() != http.StatusOK {
		u.log.Warn("upload rejected", "path", objectPath, "status", res.StatusCode(), "body", res.String())
		return "", false
	}
	return u.PublicURL(objectPath), true
}
