package main

import (
	"errors"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/andrewstucki/jumplist/catalog"
)

func newResolveCommand(cfg *Config) *cobra.Command {
	var definitionsFlag string

	cmd := &cobra.Command{
		Use:   "resolve <observed.yaml>",
		Short: "Resolve names of observed property keys against known definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions := definitionsFlag
			if definitions == "" {
				definitions = cfg.Definitions
			}
			if definitions == "" {
				return errors.New("definitions file missing, set --definitions or the config file")
			}

			known, err := catalog.ReadDefinitions(definitions)
			if err != nil {
				return goerrors.Wrap(err, 0)
			}
			observed, err := catalog.ReadDefinitions(args[0])
			if err != nil {
				return goerrors.Wrap(err, 0)
			}

			annotate(observed, catalog.NewIndex(known))
			return catalog.WriteDefinitions(cmd.OutOrStdout(), observed)
		},
	}
	cmd.Flags().StringVarP(&definitionsFlag, "definitions", "d", "", "path of the known property definitions file")
	return cmd
}
