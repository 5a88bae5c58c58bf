package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	charactersFile = "characters.yml"
	vocabularyFile = "vocabulary.yml"
)

// YAMLRepository persists the library as two YAML files in a directory.
// A missing file reads as an empty collection.
type YAMLRepository struct {
	dir string
}

// NewYAMLRepository creates a repository rooted at dir, creating it if needed.
func NewYAMLRepository(dir string) (*YAMLRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}
	return &YAMLRepository{dir: dir}, nil
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return result, nil
}

func writeYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return yaml.NewEncoder(file).Encode(data)
}

func loadCollection[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	items, err := readYamlFile[[]T](path)
	if err != nil {
		return nil, fmt.Errorf("readYamlFile(%s) > %w", path, err)
	}
	return items, nil
}

// LoadCharacters reads the character snapshot.
func (r *YAMLRepository) LoadCharacters() ([]TrackedCharacter, error) {
	return loadCollection[TrackedCharacter](filepath.Join(r.dir, charactersFile))
}

// SaveCharacters writes the full character snapshot.
func (r *YAMLRepository) SaveCharacters(characters []TrackedCharacter) error {
	return writeYamlFile(filepath.Join(r.dir, charactersFile), characters)
}

// LoadVocabulary reads the vocabulary snapshot.
func (r *YAMLRepository) LoadVocabulary() ([]VocabularyItem, error) {
	return loadCollection[VocabularyItem](filepath.Join(r.dir, vocabularyFile))
}

// SaveVocabulary writes the full vocabulary snapshot.
func (r *YAMLRepository) SaveVocabulary(items []VocabularyItem) error {
	return writeYamlFile(filepath.Join(r.dir, vocabularyFile), items)
}
