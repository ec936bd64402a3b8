package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

func newModelsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the scoring models and their reference metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func printCatalog(w io.Writer, format string) error {
	specs := models.Catalog()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(specs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(specs)
	case "text", "":
		renderCatalog(w, specs, !isTerminal(w))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
