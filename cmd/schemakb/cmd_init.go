package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schemakb/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}

		starter := config.DefaultConfig()
		starter.Sources = []config.Source{
			{
				Path:        "dumps/app.sql",
				Dialect:     "mysql",
				Database:    "app",
				Description: "Primary application database",
			},
		}
		if err := starter.Save(configPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
}
