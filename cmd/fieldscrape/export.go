package main

import (
	"fmt"

	"github.com/fwojciec/fieldscrape"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	format, err := fieldscrape.ParseExportFormat(c.Format)
	if err != nil {
		return printError(deps, err)
	}

	path, err := deps.Exporter.Export(deps.Ctx, c.Key, format)
	if err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Wrote %s\n", path)
	return nil
}
