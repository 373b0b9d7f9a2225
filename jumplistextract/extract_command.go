package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/andrewstucki/jumplist"
	"github.com/andrewstucki/jumplist/catalog"
)

type file struct {
	Name string `json:"name"`
	*jumplist.Info
}

func newExtractCommand(cfg *Config) *cobra.Command {
	var formatFlag string
	var definitionsFlag string

	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Extract properties from jump list files in a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := formatFlag
			if format == "" {
				format = cfg.OutputFormat
			}
			definitions := definitionsFlag
			if definitions == "" {
				definitions = cfg.Definitions
			}

			files, err := extractPath(args[0], cfg.Workers)
			if err != nil {
				return goerrors.Wrap(err, 0)
			}

			switch format {
			case "json":
				data, err := json.Marshal(files)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			case "yaml":
				observed := observedDefinitions(files)
				if definitions != "" {
					known, err := catalog.ReadDefinitions(definitions)
					if err != nil {
						return goerrors.Wrap(err, 0)
					}
					annotate(observed, catalog.NewIndex(known))
				}
				return catalog.WriteDefinitions(cmd.OutOrStdout(), observed)
			}
			return fmt.Errorf("unsupported output format: %s", format)
		},
	}
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", `output format, "json" or "yaml"`)
	cmd.Flags().StringVarP(&definitionsFlag, "definitions", "d", "",
		"path of a property definitions file used to annotate YAML output")
	return cmd
}

func extractPath(path string, workers int) ([]file, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		result, err := extractFile(path)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("%s: not a jump list file", path)
		}
		return []file{*result}, nil
	}

	var mutex sync.Mutex
	files := []file{}

	pool := newPool(workers)
	defer pool.Release()
	err = filepath.Walk(path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		isSymlink := info.Mode()&os.ModeSymlink > 0
		if info.IsDir() || isSymlink || info.Size() == 0 {
			return nil
		}
		pool.Enqueue(func() {
			result, err := extractFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Unable to extract '%s': %v\n", path, err)
				return
			}
			if result == nil {
				return
			}
			mutex.Lock()
			files = append(files, *result)
			mutex.Unlock()
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	pool.Wait()

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// extractFile parses one file, returning nil when the file is not a jump
// list container.
func extractFile(path string) (*file, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	format, err := jumplist.DetectFormat(f, stat.Size())
	if err != nil {
		return nil, err
	}
	if format == jumplist.FormatUnknown {
		return nil, nil
	}

	info, err := jumplist.Parse(f, stat.Size())
	if err != nil {
		return nil, err
	}
	return &file{Name: path, Info: info}, nil
}

// observedDefinitions reduces the extracted entries to the set of
// property keys seen, in definition form.
func observedDefinitions(files []file) []*catalog.PropertyDefinition {
	var observed []*catalog.PropertyDefinition
	for _, f := range files {
		for _, entry := range f.Entries {
			if entry.LNK == nil {
				continue
			}
			for _, key := range entry.LNK.PropertyKeys {
				definition := &catalog.PropertyDefinition{
					FormatIdentifier:   key.FormatIdentifier,
					PropertyIdentifier: catalog.Identifier(key.PropertyIdentifier),
				}
				definition.ValueTypes.Add(key.ValueType)
				observed = append(observed, definition)
			}
		}
	}
	return catalog.Merge(observed)
}

func annotate(observed []*catalog.PropertyDefinition, known *catalog.Index) {
	for _, definition := range observed {
		if match := known.Lookup(definition.LookupKey()); match != nil {
			definition.Merge(match)
		}
	}
}
