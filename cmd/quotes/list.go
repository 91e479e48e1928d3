package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-scripts/quotes/internal/crawler"
	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/ui"
)

type ListCmd struct {
	Topic string `help:"Only quotes scraped for TOPIC." placeholder:"TOPIC"`
	Limit int    `help:"Maximum number of quotes." default:"20"`
	Width int    `help:"Truncate quote text to N characters." default:"60" placeholder:"N"`
}

func (c *ListCmd) Run(a *app) error {
	ctx := context.Background()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New("no quote store configured; set store.driver and store.dsn")
	}
	defer st.Close()

	quotes, err := st.List(ctx, store.Filter{Topic: crawler.NormalizeTopic(c.Topic), Limit: c.Limit})
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		fmt.Fprintln(os.Stderr, "no quotes stored")
		return nil
	}

	total, err := st.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Println(ui.Table(quotes, c.Width))
	fmt.Fprintf(os.Stderr, "%d of %d stored quotes\n", len(quotes), total)
	return nil
}

type ConfigCmd struct{}

func (c *ConfigCmd) Run(a *app) error {
	data, err := a.cfg.Encode()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
