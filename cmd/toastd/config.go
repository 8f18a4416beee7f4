package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage toast.json / toast.yaml",
	}
	cmd.AddCommand(configInitCmd(), configCheckCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		dir    string
		asYAML bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write a config file with the default settings.

Examples:
  toastd config init
  toastd config init --yaml
  toastd config init --dir=deploy --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := initConfig(dir, asYAML, force)
			if err != nil {
				return err
			}
			success("Created %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the config file to")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write toast.yaml instead of toast.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

// initConfig writes the default config into dir and returns its path.
func initConfig(dir string, asYAML, force bool) (string, error) {
	name := config.ConfigFileName
	if asYAML {
		name = config.YAMLConfigFileName
	}
	path := filepath.Join(dir, name)

	if !force && config.Exists(dir) {
		return "", errors.New("E403").
			WithDetail("A config file already exists in " + dir).
			WithSuggestion("Pass --force to overwrite it")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	cfg := config.New()
	cfg.Name = filepath.Base(absDir(dir))
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func configCheckCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			if cfg.Path() == "" {
				warn("No config file found, the defaults would be used")
				return nil
			}
			success("%s is valid", cfg.Path())
			info("Listening on %s", cfg.Server.Address)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Path to toast.json or toast.yaml")
	return cmd
}
