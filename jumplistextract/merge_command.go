package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/andrewstucki/jumplist/catalog"
)

func newMergeCommand() *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "merge <directory>",
		Short: "Merge the property definition YAML files of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := filepath.Glob(filepath.Join(args[0], "*.yaml"))
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no definition files in %s", args[0])
			}
			sort.Strings(paths)

			var batches [][]*catalog.PropertyDefinition
			for _, path := range paths {
				definitions, err := catalog.ReadDefinitions(path)
				if err != nil {
					return goerrors.Wrap(err, 0)
				}
				batches = append(batches, definitions)
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputFlag != "" {
				f, err := os.Create(outputFlag)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return catalog.WriteDefinitions(out, catalog.Merge(batches...))
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "path of the merged definitions file, defaults to stdout")
	return cmd
}
