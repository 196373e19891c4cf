package storage

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/echobench/echobench/internal/pkg/errors"
	"github.com/echobench/echobench/internal/validator"
)

// FormatVersion is the descriptor format this engine understands.
const FormatVersion = "v1"

// DescriptorFile is the descriptor filename inside a dataset directory.
const DescriptorFile = "metadata.json"

// Descriptor enumerates the tables of one stored dataset.
type Descriptor struct {
	FormatVersion string                     `json:"format_version" validate:"required"`
	Tables        map[string]TableDescriptor `json:"tables" validate:"required,min=1"`
}

// TableDescriptor describes one stored table: where its data lives and
// the role metadata needed to interpret it.
type TableDescriptor struct {
	Path          string                     `json:"path" validate:"required"`
	EntityColumns []string                   `json:"entity_columns"`
	SequenceIndex string                     `json:"sequence_index,omitempty"`
	Fields        map[string]FieldDescriptor `json:"fields" validate:"required,min=1,dive"`
}

// FieldDescriptor declares one column's type.
type FieldDescriptor struct {
	Type    string `json:"type" validate:"required,oneof=categorical numerical datetime id"`
	Subtype string `json:"subtype,omitempty"`
}

// ReadDescriptor loads and validates a descriptor file.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	if err := validator.Validate(&desc); err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid descriptor: %v", err))
	}
	if desc.FormatVersion != FormatVersion {
		return nil, apperrors.Validation(fmt.Sprintf(
			"unsupported descriptor format %q, want %q", desc.FormatVersion, FormatVersion))
	}
	if len(desc.Tables) != 1 {
		return nil, apperrors.Validation(fmt.Sprintf(
			"descriptor must declare exactly one table, found %d", len(desc.Tables)))
	}
	return &desc, nil
}

// Table returns the single table descriptor and its name.
func (d *Descriptor) Table() (string, TableDescriptor) {
	for name, table := range d.Tables {
		return name, table
	}
	return "", TableDescriptor{}
}
