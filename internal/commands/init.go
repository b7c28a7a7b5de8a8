package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billsplit-dev/billsplit/internal/config"
)

func newInitCommand() *cobra.Command {
	var symbol string
	var ids string
	var lenient bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default " + config.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			cfg.Currency.Symbol = symbol
			cfg.Bill.IDs = ids
			cfg.Settlement.Strict = !lenient
			if err := cfg.Validate(); err != nil {
				return err
			}

			path, err := runInit(absDir, cfg, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "$", "currency symbol")
	cmd.Flags().StringVar(&ids, "ids", "sequential", "identifier style (sequential or uuid)")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "settle balances that do not sum to zero")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(dir string, cfg *config.Config, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	if err := config.Save(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}
