package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/validation"
)

func newValidateCmd() *cobra.Command {
	var (
		schemaPaths []string
		operation   string
		maxDepth    int
	)
	cmd := &cobra.Command{
		Use:   "validate --schema <path> <document>...",
		Short: "Validate operation documents against a schema",
		Long: `Validate operation documents against a schema.

Every error of every document is printed as file:line:column: message.
The command fails when any document is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSchema(schemaPaths)
			if err != nil {
				return err
			}
			rules := append([]validation.Rule(nil), validation.DefaultRules...)
			if maxDepth > 0 {
				rules = append(rules, validation.MaxDepth(maxDepth))
			}

			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				var errs gqlerror.List
				doc, err := language.ParseQuery(string(data))
				if err != nil {
					errs = append(errs, language.AsError(err))
				} else {
					errs = validation.Validate(s, doc, nil, nil, operation, rules...)
				}
				for _, e := range errs {
					loc := ""
					if len(e.Locations) > 0 {
						loc = fmt.Sprintf(":%d:%d", e.Locations[0].Line, e.Locations[0].Column)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s: %s\n", path, loc, e.Message)
				}
				if len(errs) > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents are invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&schemaPaths, "schema", "s", nil, "schema file or directory (repeatable)")
	cmd.Flags().StringVar(&operation, "operation", "", "operation whose variables are checked")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "reject selections nested deeper than this (0 disables)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
