package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plantaest/citronspam/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/citronspam.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new citronspam configuration file",
		Long: `Initialize creates a new .citronspam configuration file in the current directory.

The generated file includes:
- Commented bot password credentials
- Default report prefix, language, skin and timeout
- A wiki list for the sync command

Examples:
  # Create .citronspam in current directory
  citronspam init

  # Create config file at a specific path
  citronspam init -o ~/.config/citronspam/config.yaml

  # Force overwrite existing file
  citronspam init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/citronspam.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may hold a bot password.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Bot password credentials")
	fmt.Fprintln(out, "  - The wikis to sync")
	fmt.Fprintln(out, "  - Report prefix and interface language per wiki")

	return nil
}
