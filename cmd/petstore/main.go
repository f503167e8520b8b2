// cmd/petstore/main.go
//
// This is the entry point for the pet-store admin client.
//
// Flow:
// 1. Resolve configuration (defaults → YAML file → env → flags)
// 2. Open the diagnostic logbook and wire it into the API client
// 3. Launch the TUI

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/config"
	"github.com/HristoTrendafilov/pet-store/internal/logbook"
	"github.com/HristoTrendafilov/pet-store/internal/tui"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	apiURL := flag.String("api", "", "override the API base URL")
	writeConfig := flag.Bool("init-config", false, "write a commented default config file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.WriteDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}

	book, err := logbook.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening logbook: %v\n", err)
		os.Exit(1)
	}
	book.Info("Session opened · backend %s", cfg.APIBaseURL)

	client, err := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, api.WithReporter(book))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building API client: %v\n", err)
		os.Exit(1)
	}

	// tea.NewProgram creates a new bubbletea application around our root
	// model; Run blocks until the user quits.
	p := tea.NewProgram(
		tui.NewApp(client, book),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
