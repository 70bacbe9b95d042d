package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/serplens/serplens"
	serphttp "github.com/serplens/serplens/http"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	projection, err := deps.Runner.GetAnalysisResults(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serplens.ErrorMessage(err))
		return err
	}

	out := deps.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		defer f.Close()
		out = f
	}

	if err := writeExport(out, c.Format, projection); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serplens.ErrorMessage(err))
		return err
	}

	if c.Output != "" {
		fmt.Fprintf(deps.Stdout, "Wrote %s export to %s\n", c.Format, c.Output)
	}
	return nil
}

func writeExport(w io.Writer, format string, projection *serplens.AnalysisProjection) error {
	switch format {
	case "csv":
		return serphttp.WriteCSV(w, projection)
	case "html":
		return serphttp.RenderReport(w, projection)
	case "fullcontent":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(serphttp.NewFullContentExport(projection))
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(projection)
	}
	return serplens.Errorf(serplens.EINVALID, "unknown export format %q", format)
}
