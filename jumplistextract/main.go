package main

import (
	"errors"
	"fmt"
	"os"

	goerrors "github.com/go-errors/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/andrewstucki/jumplist"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var wrapped *goerrors.Error
		if errors.As(err, &wrapped) {
			fmt.Fprint(os.Stderr, wrapped.ErrorStack())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var verboseFlag bool

	cfg := defaultConfig()

	rootCmd := &cobra.Command{
		Use:           "jumplistextract",
		Short:         "Extract Windows serialized property information from jump lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFlag != "" {
				loaded, err := loadConfig(configFlag)
				if err != nil {
					return err
				}
				*cfg = *loaded
			}
			level := zerolog.WarnLevel
			if verboseFlag {
				level = zerolog.InfoLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			jumplist.SetLogger(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newExtractCommand(cfg))
	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newResolveCommand(cfg))

	return rootCmd
}
