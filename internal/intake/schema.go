package intake

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind controls how an answer is validated and stored.
type Kind string

const (
	KindText   Kind = "text"
	KindYesNo  Kind = "yesno"
	KindZip    Kind = "zip"
	KindNumber Kind = "number"
)

// Question is one step of the intake conversation. The validated answer is
// stored on the record under Key.
type Question struct {
	Key    string `yaml:"key"`
	Prompt string `yaml:"prompt"`
	Kind   Kind   `yaml:"kind"`
	Retry  string `yaml:"retry"`
}

// Schema is the questionnaire loaded from schema.yaml.
type Schema struct {
	Greeting   string     `yaml:"greeting"`
	Completion string     `yaml:"completion"`
	Holding    string     `yaml:"holding"`
	Questions  []Question `yaml:"questions"`
}

// LoadSchema reads and validates a schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intake schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema. Unknown fields are rejected so typos in
// the file surface at startup.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse intake schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports every problem in the schema joined into one error.
func (s *Schema) Validate() error {
	var errs []error
	if s.Completion == "" {
		errs = append(errs, errors.New("completion reply is required"))
	}
	if len(s.Questions) == 0 {
		errs = append(errs, errors.New("at least one question is required"))
	}
	seen := make(map[string]bool, len(s.Questions))
	for i, q := range s.Questions {
		switch {
		case q.Key == "":
			errs = append(errs, fmt.Errorf("question %d: key is required", i))
		case seen[q.Key]:
			errs = append(errs, fmt.Errorf("question %d: duplicate key %q", i, q.Key))
		}
		seen[q.Key] = true
		if q.Prompt == "" {
			errs = append(errs, fmt.Errorf("question %q: prompt is required", q.Key))
		}
		switch q.Kind {
		case KindText, KindYesNo, KindZip, KindNumber:
		default:
			errs = append(errs, fmt.Errorf("question %q: unknown kind %q", q.Key, q.Kind))
		}
	}
	return errors.Join(errs...)
}
