// Command apiserver runs the crawlmeter HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crawlmeter/crawlmeter/internal/bootstrap"
	"github.com/crawlmeter/crawlmeter/internal/config"
)

const defaultConfigPath = "configs/crawlmeter.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunAPIServer(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver failed: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to environment-only
// configuration when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
