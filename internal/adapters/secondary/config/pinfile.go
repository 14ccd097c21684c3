package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/sufield/trustgate/internal/core/domain"
	trusterrors "github.com/sufield/trustgate/internal/core/errors"
)

// PinFile is the standalone pin document the watcher reloads. Keeping pins in
// their own file lets operators rotate fingerprints without touching the rest
// of the configuration.
type PinFile struct {
	Algorithm string              `yaml:"algorithm" validate:"omitempty,pin_algorithm"`
	Pins      map[string][]string `yaml:"pins" validate:"required,dive,keys,pin_host,endkeys,required,dive,required,pin"`
}

// ParsePinFile parses and validates a pin document.
func ParsePinFile(data []byte) (*domain.PinSet, error) {
	var doc PinFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, trusterrors.NewConfigError(trusterrors.ErrInvalidPinSet,
			fmt.Errorf("failed to parse pin file: %w", err))
	}

	if err := domain.ValidateStruct(&doc); err != nil {
		issues := domain.ConvertValidationErrors(err)
		if len(issues) > 0 {
			return nil, trusterrors.NewConfigError(trusterrors.ErrInvalidPinSet, issues[0])
		}
		return nil, trusterrors.NewConfigError(trusterrors.ErrInvalidPinSet, err)
	}

	pins, err := domain.NewPinSet(domain.PinAlgorithm(doc.Algorithm), doc.Pins)
	if err != nil {
		return nil, trusterrors.NewConfigError(trusterrors.ErrInvalidPinSet, err)
	}
	return pins, nil
}

// LoadPinFile reads and parses a pin file from disk.
func LoadPinFile(path string) (*domain.PinSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pin file %s: %w", path, err)
	}
	return ParsePinFile(data)
}
