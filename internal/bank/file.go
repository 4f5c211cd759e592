package bank

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// bankFile is the on-disk shape of a subject bank. JSON files parse through the same decoder.
type bankFile struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Questions []Template `yaml:"questions"`
}

// LoadDir reads every *.yaml, *.yml and *.json bank under dir into a Static provider.
// The subject ID defaults to the file name without extension.
func LoadDir(dir string, logger zerolog.Logger) (*Static, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read bank dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	banks := make([]StaticBank, 0, len(names))
	for _, name := range names {
		b, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
		logger.Debug().
			Str("file", name).
			Str("subject", b.Subject.ID).
			Int("questions", len(b.Questions)).
			Msg("bank loaded")
	}

	provider, err := NewStatic(banks...)
	if err != nil {
		return nil, fmt.Errorf("load bank dir %s: %w", dir, err)
	}
	logger.Info().Str("dir", dir).Int("subjects", len(banks)).Msg("question banks loaded")
	return provider, nil
}

// LoadFile parses a single bank file.
func LoadFile(path string) (StaticBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StaticBank{}, fmt.Errorf("read bank file: %w", err)
	}

	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return StaticBank{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if f.ID == "" {
		base := filepath.Base(path)
		f.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := ValidateAll(f.Questions); err != nil {
		return StaticBank{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return StaticBank{
		Subject:   Subject{ID: f.ID, Title: f.Title},
		Questions: f.Questions,
	}, nil
}
