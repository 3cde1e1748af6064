package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aio-strategy/internal/client"
	"github.com/bryanwahyu/aio-strategy/internal/config"
)

var (
	configPath string
	apiURL     string
	token      string
	plain      bool
	width      int
)

var rootCmd = &cobra.Command{
	Use:   "aio",
	Short: "Brand analysis client for AI-search optimisation",
	Long: `aio submits brand information to the analysis server and prints the
generated AIO/LLMO strategy report.

Available subcommands:
  analyze - Submit a brand for analysis
  show    - Print a stored analysis by id
  history - List your recent analyses
  token   - Mint a development token from the shared JWT secret`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config.yaml"), "config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "analysis server base URL (default from API_URL or config)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("AIO_TOKEN"), "bearer token (default from AIO_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print reports without styling")
	rootCmd.PersistentFlags().IntVar(&width, "width", 100, "wrap width for styled output, 0 disables wrapping")

	rootCmd.AddCommand(analyzeCmd, showCmd, historyCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.Client.APIURL = apiURL
	}
	return cfg, nil
}

func newAPI() (*client.API, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.NewAPI(cfg.Client.APIURL), nil
}
