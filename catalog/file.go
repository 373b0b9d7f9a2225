package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ReadDefinitions reads property definitions from a YAML definitions
// file: a sequence of YAML documents, one definition each. Unknown keys
// and definitions without a format or property identifier are rejected.
func ReadDefinitions(path string) ([]*PropertyDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	definitions, err := readDefinitions(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definitions, nil
}

func readDefinitions(r io.Reader) ([]*PropertyDefinition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var definitions []*PropertyDefinition
	for {
		definition := &PropertyDefinition{}
		err := decoder.Decode(definition)
		if errors.Is(err, io.EOF) {
			return definitions, nil
		}
		if err != nil {
			return nil, err
		}
		if definition.isZero() {
			continue
		}
		if definition.FormatIdentifier == "" {
			return nil, errors.New("property definition missing format identifier")
		}
		if _, err := uuid.Parse(definition.FormatIdentifier); err != nil {
			return nil, fmt.Errorf("invalid format identifier: %s", definition.FormatIdentifier)
		}
		if definition.PropertyIdentifier == "" {
			return nil, errors.New("property definition missing property identifier")
		}
		definitions = append(definitions, definition)
	}
}

// WriteDefinitions writes definitions as a multi-document YAML
// definitions file.
func WriteDefinitions(w io.Writer, definitions []*PropertyDefinition) error {
	if _, err := io.WriteString(w, "# winsps-kb property definitions\n"); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	for _, definition := range definitions {
		if err := encoder.Encode(definition); err != nil {
			return err
		}
	}
	return encoder.Close()
}
