package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/gqlcore/internal/schema"
)

func newCompileSDLCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compile-sdl <path>...",
		Short: "Merge and validate schema files into a single SDL document",
		Long: `Merge and validate schema files into a single SDL document.

Directories are searched recursively for .graphql and .graphqls files.
Type extensions are applied. Validation always runs and the command fails
on the first invalid schema.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.Load(args...)
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			sdl := schema.Render(s)
			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), sdl)
				return err
			}
			return os.WriteFile(out, []byte(sdl), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the compiled SDL to a file instead of stdout")
	return cmd
}
