package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/SAP-F-2025/flashcard-service/internal/app"
	"github.com/SAP-F-2025/flashcard-service/internal/config"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
)

const usage = `Usage: flashcards <command> [flags]

Commands:
  generate  build a deck from a PDF, DOCX or text file
  quiz      run an interactive quiz over a deck
  export    convert a deck to json, csv or xlsx
  stats     show the card type breakdown of a deck

Run "flashcards <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	// The CLI only surfaces warnings unless LOG_LEVEL asks for more.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := utils.NewLogger(os.Stderr, level, false)

	ctx := context.Background()
	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize:", err)
		os.Exit(1)
	}

	code := newCLI(container, os.Stdin, os.Stdout).run(ctx, os.Args[1:])
	container.Close()
	os.Exit(code)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}
