package main

import (
	"context"
	"fmt"

	"github.com/go-scripts/quotes/internal/browser"
	"github.com/go-scripts/quotes/internal/config"
	"github.com/go-scripts/quotes/internal/crawler"
	"github.com/go-scripts/quotes/internal/media"
	"github.com/go-scripts/quotes/internal/pipeline"
	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/internal/store/postgres"
	"github.com/go-scripts/quotes/internal/store/sqlite"
)

// app carries what commands share.
type app struct {
	cfg *config.Config
}

func (a *app) launcher() crawler.Launcher {
	return browser.NewLauncher(a.cfg.BrowserOptions())
}

// openStore returns nil without error when no store is configured.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, a.cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, a.cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

// imageDir is the directory served for locally re-hosted images, if any.
func (a *app) imageDir() string {
	img := a.cfg.Images
	if img.Enabled && img.Backend == config.BackendDir {
		return img.Dir
	}
	return ""
}

func (a *app) uploader() (media.Uploader, error) {
	img := a.cfg.Images
	switch img.Backend {
	case config.BackendSupabase:
		return media.NewSupabaseUploader(img.SupabaseURL, img.SupabaseKey, img.Bucket), nil
	case config.BackendDir:
		base := img.PublicBase
		if base == "" {
			base = "http://" + a.cfg.Server.Listen + "/images"
		}
		u, err := media.NewDirUploader(img.Dir, base)
		if err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, fmt.Errorf("unknown image backend %q", img.Backend)
	}
}

// processor returns nil when neither image re-hosting nor a store is set up.
func (a *app) processor(st store.Store) (*pipeline.Processor, error) {
	var rehoster pipeline.Rehoster
	if a.cfg.Images.Enabled {
		up, err := a.uploader()
		if err != nil {
			return nil, err
		}
		rehoster = media.NewRehoster(media.NewFetcher(a.cfg.Browser.UserAgent), up)
	}
	if rehoster == nil && st == nil {
		return nil, nil
	}
	return pipeline.New(rehoster, st), nil
}
