package catalog

import (
	"fmt"
	"io"

	"github.com/fjod/phone_store/internal/domain"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Phones []domain.Phone `yaml:"phones"`
}

// LoadSeed decodes a YAML document with a top level "phones" list.
func LoadSeed(r io.Reader) ([]domain.Phone, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return []domain.Phone{}, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	if f.Phones == nil {
		return []domain.Phone{}, nil
	}
	return f.Phones, nil
}
