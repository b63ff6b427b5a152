package main

import (
	"fmt"

	"github.com/fwojciec/fieldscrape"
)

// Run executes the view command.
func (c *ViewCmd) Run(deps *Dependencies) error {
	format, err := fieldscrape.ParseExportFormat(c.Format)
	if err != nil {
		return printError(deps, err)
	}

	out, err := deps.Records.ExportRecord(deps.Ctx, c.Key, format)
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintln(deps.Stdout, string(out))
	return nil
}
