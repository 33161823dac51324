package main

import (
	"fmt"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/immxrtalbeast/presensi/internal/config"
	"github.com/immxrtalbeast/presensi/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "presensi"

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var (
	configFile string
	cfg        *config.Config
	log        *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Meeting attendance with rotating QR check-in",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file (defaults to CONFIG_PATH, then config/local.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env")

		loaded, err := config.Load(config.ResolvePath(configFile))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		log = setupLogger(cfg.Env)
		slog.SetDefault(log)

		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
			log.Debug(fmt.Sprintf(format, v...))
		})); err != nil {
			log.Warn("failed to set GOMAXPROCS", slog.String("error", err.Error()))
		}
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(userCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log.With(slog.String("env", env))
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
