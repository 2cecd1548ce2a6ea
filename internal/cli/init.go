package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/db"
)

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the foreman config and database",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.Path()
			if err != nil {
				return err
			}

			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := config.Save(configPath, config.Default()); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Printf("Wrote default config to %s\n", configPath)
			} else {
				fmt.Printf("Config already exists at %s\n", configPath)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dbPath := cfg.DBPath
			if dbPath == "" {
				dbPath, err = db.DefaultPath()
				if err != nil {
					return err
				}
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close()

			fmt.Printf("Database ready at %s\n", dbPath)
			return nil
		},
	}
}
