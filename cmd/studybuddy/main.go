package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/studybuddyhq/studybuddy/pkg/config"
	"github.com/studybuddyhq/studybuddy/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
	goVersion string
)

const appName = "studybuddy"

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, formatVersion())
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	fmt.Printf("  Go: %s\n", goVer)
}

func configPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".studybuddy", "config.json")
	}
	return filepath.Join(home, ".studybuddy", "config.json")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}

func main() {
	if err := executeCLI(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
