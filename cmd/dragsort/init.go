package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragsort/internal/config"
	"github.com/vango-dev/dragsort/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a dragsort.json with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, name, force)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing dragsort.json")

	return cmd
}

func runInit(dir, name string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.New("E140").
			WithDetail("dragsort.json already exists in " + dir).
			WithSuggestion("Use --force to overwrite it")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	cfg := config.New()
	cfg.Name = name
	if cfg.Name == "" {
		cfg.Name = filepath.Base(abs)
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success("Created %s", path)
	return nil
}
