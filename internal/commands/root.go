package commands

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billsplit-dev/billsplit/internal/buildinfo"
	"github.com/billsplit-dev/billsplit/internal/config"
	"github.com/billsplit-dev/billsplit/internal/id"
	"github.com/billsplit-dev/billsplit/internal/logging"
	"github.com/billsplit-dev/billsplit/internal/money"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *slog.Logger
	now func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	rootCmd := &cobra.Command{
		Use:     "billsplit",
		Short:   "Split a bill and work out who pays whom",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvPath+" or ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newBillCommand(a))
	rootCmd.AddCommand(newSettleCommand(a))
	rootCmd.AddCommand(newPoolCommand(a))
	rootCmd.AddCommand(newPaidCommand(a))

	return rootCmd
}

// setup loads the configuration and installs the logger. An explicit
// --config must exist; the default location may be absent.
func (a *app) setup(cmd *cobra.Command) error {
	path := config.Path(a.configPath)

	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(path)
	} else {
		a.cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return err
	}

	a.log = logging.Setup(cmd.ErrOrStderr(), logging.Level(a.cfg.Log.Level, a.verbose))
	a.log.Debug("configuration loaded", "path", path, "strict", a.cfg.Settlement.Strict, "ids", a.cfg.Bill.IDs)
	return nil
}

// ids returns a fresh generator of the configured style.
func (a *app) ids() (id.Generator, error) {
	return id.FromName(a.cfg.Bill.IDs)
}

// amount formats d with the configured currency symbol.
func (a *app) amount(d decimal.Decimal) string {
	return money.Format(d, a.cfg.Currency.Symbol)
}
