package main

import "fmt"

// Run executes the models command.
func (c *ModelsCmd) Run(deps *Dependencies) error {
	var models []string
	var err error
	if c.Refresh {
		models, err = deps.Catalog.Refresh(deps.Ctx)
	} else {
		models, err = deps.Catalog.Models(deps.Ctx)
	}
	if err != nil {
		return printError(deps, err)
	}

	if len(models) == 0 {
		fmt.Fprintln(deps.Stdout, "No models found. Use 'fieldscrape models --refresh' to build the list.")
		return nil
	}

	for _, name := range models {
		fmt.Fprintln(deps.Stdout, name)
	}
	return nil
}

