package main

import (
	"fmt"

	"github.com/fwojciec/fieldscrape"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	fields, err := fieldscrape.ParseFields(c.Fields)
	if err != nil {
		return printError(deps, err)
	}
	format, err := fieldscrape.ParseExportFormat(c.Format)
	if err != nil {
		return printError(deps, err)
	}

	res, err := deps.Scraper.Scrape(deps.Ctx, fieldscrape.ScrapeRequest{
		URL:    c.URL,
		Fields: fields,
		Model:  c.Model,
	})
	if err != nil {
		return printError(deps, err)
	}

	out, err := format.Format(res.Record)
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintln(deps.Stdout, string(out))
	fmt.Fprintf(deps.Stderr, "Saved as %s (model %s). Use 'fieldscrape view %s' to show it again.\n", res.Key, res.Model, res.Key)
	return nil
}

// printError reports err on stderr and returns it.
func printError(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", fieldscrape.ErrorMessage(err))
	return err
}
