package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DirUploader writes images below a local directory that is served at
// publicBase, for example by a static file server.
type DirUploader struct {
	dir        string
	publicBase string
	log        *log.Logger
}

// NewDirUploader creates dir if needed.
func NewDirUploader(dir, publicBase string) (*DirUploader, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &DirUploader{
		dir:        dir,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		log:        log.WithPrefix("media"),
	}, nil
}

func (u *DirUploader) Upload(ctx context.Context, topic string, img *Image) (string, bool) {
	objectPath := ObjectPath(topic, img.Ext)
	target := filepath.Join(u.dir, filepath.FromSlash(objectPath))

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		u.log.Error("failed to create topic directory", "path", target, "err", err)
		return "", false
	}
	if err := os.WriteFile(target, img.Data, 0644); err != nil {
		u.log.Error("failed to write image", "path", target, "err", err)
		return "", false
	}
	return u.publicBase + "/" + objectPath, true
}
