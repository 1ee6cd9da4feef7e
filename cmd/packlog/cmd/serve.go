/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ssargent/packlog/pkg/api"
	"github.com/ssargent/packlog/pkg/config"
	"github.com/ssargent/packlog/pkg/logfile"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an HTTP inspection API over a log",
	Long: `Start the HTTP inspection server. The log path, bind address, and
port come from flags or a YAML config file.

Examples:
  packlog serve --log flight.sslog --port 8080
  packlog serve --config ~/.config/packlog/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		if cfg.LogPath == "" {
			return fmt.Errorf("a log file is required (--log or log_path in config)")
		}

		setupLogging(cfg.Logging.Level)

		reader, err := logfile.Open(cfg.LogPath)
		if err != nil {
			return err
		}
		defer reader.Close()

		logger := log.With().Str("component", "api").Logger().Level(zerolog.GlobalLevel())

		return api.StartServer(reader, api.ServerConfig{
			Bind: cfg.Bind,
			Port: cfg.Port,
		}, logger)
	},
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if logPath, _ := cmd.Flags().GetString("log"); logPath != "" {
		cfg.LogPath = logPath
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}

	return cfg, nil
}

func init() {
	serveCmd.Flags().String("config", "", "Config file path")
	serveCmd.Flags().String("log", "", "Log file to serve")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind")
	rootCmd.AddCommand(serveCmd)
}
