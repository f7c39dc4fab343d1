package main

import (
	stdLog "log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/biblioteca-service/library/app"
	"github.com/Astemirdum/biblioteca-service/library/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "biblioteca",
		Short:         "Library lending service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(envFile); err != nil {
				stdLog.Println("no env file loaded:", err)
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the env file")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		port  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []config.Option{
				config.WithWriteTimeout(time.Minute),
				config.WithHTTPPort(port),
			}
			if debug {
				opts = append(opts, config.WithLogLevel(zapcore.DebugLevel))
			}
			cfg, err := config.NewConfig(opts...)
			if err != nil {
				return err
			}
			return app.Run(cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port, overrides LIBRARY_HTTP_PORT")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug logging")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg)
		},
	}
}
