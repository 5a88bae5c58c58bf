package main

import (
	"fmt"

	"github.com/mkawano/kanshu/internal/config"
	"github.com/mkawano/kanshu/internal/database"
	"github.com/mkawano/kanshu/internal/dictionary"
	"github.com/mkawano/kanshu/internal/library"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// newStore builds the library store on the configured persistence backend and
// loads the current snapshot.
func newStore(cfg *config.Config) (*library.Store, error) {
	var repo library.Repository
	switch cfg.Library.Backend {
	case "mysql":
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database.Open > %w", err)
		}
		repo = library.NewDBRepository(db)
	default:
		yamlRepo, err := library.NewYAMLRepository(cfg.Library.Directory)
		if err != nil {
			return nil, fmt.Errorf("library.NewYAMLRepository > %w", err)
		}
		repo = yamlRepo
	}

	store := library.NewStore(repo)
	store.Load()
	return store, nil
}

func newDictionaryClient(cfg *config.Config) *dictionary.Client {
	return dictionary.NewClient(cfg.Dictionary.CacheDirectory, dictionary.Config{
		BaseURL: cfg.Dictionary.BaseURL,
	})
}
