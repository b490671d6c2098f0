package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/sidmtools/internal/errors" // Custom errors package
	"github.com/mcncl/sidmtools/internal/models"
	"gopkg.in/yaml.v3"
)

// Parse reads a single YAML document from reader. Mapping order is kept.
// Empty input parses to an empty leaf, the way a YAML loader yields null.
func Parse(reader io.Reader) (models.Value, error) {
	decoder := yaml.NewDecoder(reader)

	var root yaml.Node
	if err := decoder.Decode(&root); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Leaf{}, nil
		}
		var typeErr *yaml.TypeError
		if stderrors.As(err, &typeErr) {
			return nil, errors.NewParsingError(strings.Join(typeErr.Errors, "; "), errors.ErrInvalidYAML)
		}
		return nil, errors.NewParsingError(err.Error(), errors.ErrInvalidYAML)
	}

	var trailing yaml.Node
	if err := decoder.Decode(&trailing); err == nil {
		return nil, errors.NewParsingError("multiple documents found in stream", errors.ErrMultipleDocs)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("invalid trailing data after first document", err)
	}

	return models.FromYAML(&root)
}

// ParseString parses YAML from a string
func ParseString(yamlString string) (models.Value, error) {
	return Parse(strings.NewReader(yamlString))
}

// ParseFile parses the YAML file at filePath
func ParseFile(filePath string) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	v, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return v, nil
}

// LoadYAML loads a YAML file and returns its top-level mapping. A document
// whose root is not a mapping is reported as a lookup error.
func LoadYAML(path string) (models.Map, error) {
	v, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(models.Map)
	if !ok {
		return nil, errors.NewLookupError(
			fmt.Sprintf("'%s' holds a %s, expected a mapping", path, models.Kind(v)),
			errors.ErrUnexpectedType,
		)
	}
	return m, nil
}
