// Package cli holds the storefront command tree.
package cli

import (
	"github.com/fjod/phone_store/internal/config"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const serviceName = "storefront"

// app is the state shared by every command once the config is loaded.
type app struct {
	cfg *config.Config
	log *logrus.Entry
}

func NewRootCommand() *cobra.Command {
	a := &app{}
	var logLevel string

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Used phone storefront with WhatsApp checkout",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			a.cfg = cfg
			a.log = logger.New(logger.Options{
				Service: serviceName,
				Env:     cfg.Env,
				Level:   cfg.LogLevel,
				Output:  cmd.ErrOrStderr(),
			})
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newCatalogCommand(a))
	cmd.AddCommand(newCartCommand(a))
	cmd.AddCommand(newCheckoutCommand(a))

	return cmd
}
