package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/citecheck/internal/config"
	"github.com/jackzampolin/citecheck/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage citecheck configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		hd, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := hd.EnsureExists(); err != nil {
			return err
		}

		path := hd.ConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
