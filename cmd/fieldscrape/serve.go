package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/fieldscrape"
	fshttp "github.com/fwojciec/fieldscrape/http"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. The server and the model list scheduler
// run until the context is canceled or either fails.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := fshttp.NewServer()
	srv.Addr = deps.Config.Server.Addr
	if c.Addr != "" {
		srv.Addr = c.Addr
	}
	srv.Scraper = deps.Scraper
	srv.Records = deps.Records
	srv.Catalog = deps.Catalog
	if deps.Logger != nil {
		srv.Logger = deps.Logger
	}

	g, gctx := errgroup.WithContext(deps.Ctx)

	refresh := func() {
		ctx, cancel := context.WithTimeout(gctx, c.refreshTimeout())
		defer cancel()
		// Failures are logged by the catalog decorator; the old list stays.
		_, _ = deps.Catalog.Refresh(ctx)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(deps.Config.Catalog.Schedule, refresh); err != nil {
		return printError(deps, fieldscrape.WrapError(fieldscrape.EINVALID, err, "invalid catalog schedule %q", deps.Config.Catalog.Schedule))
	}

	if err := srv.Open(); err != nil {
		return printError(deps, fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "listen on %s", srv.Addr))
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", srv.URL())

	if !c.SkipRefresh {
		g.Go(func() error {
			refresh()
			return nil
		})
	}

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	g.Go(func() error {
		return srv.Serve(gctx)
	})

	if err := g.Wait(); err != nil {
		return printError(deps, err)
	}
	return nil
}

func (c *ServeCmd) refreshTimeout() time.Duration {
	if c.RefreshTimeout <= 0 {
		return 2 * time.Minute
	}
	return c.RefreshTimeout
}
