package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"planora/internal/config"
	"planora/internal/database"
)

// NewMigrateCommand creates the migrate command. Migrations are plain
// SQL files applied in lexical order; each file runs in its own
// transaction.
func NewMigrateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory of .sql migration files")
	return cmd
}

func runMigrate(cmd *cobra.Command, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer db.Close()

	for _, file := range files {
		sqlText, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlText)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", filepath.Base(file), err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", filepath.Base(file))
	}
	return nil
}
