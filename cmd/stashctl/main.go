// Command stashctl is a terminal client for the belongings API.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"belongings/internal/client"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	token   string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "stashctl",
	Short:         "Browse and rearrange your belongings from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("STASH_API_URL", "http://localhost:8080"), "API base URL (env STASH_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("STASH_TOKEN"), "Bearer token (env STASH_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and state changes to stderr")

	rootCmd.AddCommand(foldersCmd, itemsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(apiURL, token)
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
