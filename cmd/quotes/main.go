package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/quotes/internal/config"
)

// Globals are accepted by every command.
type Globals struct {
	Config string `help:"Path to configuration file (default ~/.config/quotes/config.toml)." type:"path" placeholder:"FILE"`
	Debug  bool   `help:"Enable debug logging."`
}

// CLI flags structure
type CLI struct {
	Globals

	Serve      ServeCmd  `cmd:"" help:"Serve scrapes over HTTP as NDJSON streams."`
	Scrape     ScrapeCmd `cmd:"" help:"Scrape one or more topics in-process."`
	List       ListCmd   `cmd:"" help:"List stored quotes."`
	ShowConfig ConfigCmd `cmd:"" name:"config" help:"Print the effective configuration."`
}

func setupLogging(debug bool) {
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.TimeOnly)
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("quotes"),
		kong.Description("Scrape topic quotes with a headless browser and stream them as they are found."),
		kong.UsageOnError(),
	)

	setupLogging(cli.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	err = ctx.Run(&app{cfg: cfg})
	ctx.FatalIfErrorf(err)
}
