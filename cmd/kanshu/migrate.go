package main

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mkawano/kanshu/internal/database"
	"github.com/mkawano/kanshu/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the MySQL schema for the database backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			names, err := fs.Glob(schemas.Migrations, "migrations/*.sql")
			if err != nil {
				return fmt.Errorf("fs.Glob > %w", err)
			}
			sort.Strings(names)

			for _, name := range names {
				contents, err := schemas.Migrations.ReadFile(name)
				if err != nil {
					return fmt.Errorf("schemas.Migrations.ReadFile(%s) > %w", name, err)
				}
				if _, err := db.Exec(string(contents)); err != nil {
					return fmt.Errorf("db.Exec(%s) > %w", name, err)
				}
				fmt.Printf("Applied %s\n", name)
			}
			return nil
		},
	}
}
