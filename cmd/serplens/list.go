package main

import (
	"fmt"

	"github.com/serplens/serplens"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	analyses, err := deps.Analyses.FindAnalyses(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serplens.ErrorMessage(err))
		return err
	}

	if len(analyses) == 0 {
		fmt.Fprintln(deps.Stdout, "No analyses found. Use 'serplens analyze' to start one.")
		return nil
	}

	for _, a := range analyses {
		fmt.Fprintf(deps.Stdout, "%d  %-10s  %s  %s\n", a.ID, a.Status, a.CreatedAt.Format("2006-01-02 15:04"), a.Keyword)
	}

	return nil
}
