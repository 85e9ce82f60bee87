package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/out/logger"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "availability-engine",
		Short:         "Clinician availability and appointment slots engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedDefaultCmd())
	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap загружает конфигурацию и поднимает логгер, общий для всех команд
func bootstrap() (*config.Config, *logger.ZapLogger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	mainLogger, err := logger.NewZapLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, mainLogger, nil
}
