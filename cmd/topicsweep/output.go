package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"topicsweep/internal/services"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(cmd *cobra.Command, spec tableSpec) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, spec.render(shouldColorize(out)))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// parseFormat validates an output format flag against the allowed values.
func parseFormat(value string, allowed ...string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(value))
	if format == "" {
		format = formatTable
	}
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", services.Wrap(services.ErrConfiguration, "cli", "format",
		fmt.Sprintf("unsupported output format %q (want one of %s)", value, strings.Join(allowed, ", ")), nil)
}
