package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/SAP-F-2025/flashcard-service/internal/app"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	faintColor   = color.New(color.Faint)
)

type cli struct {
	container *app.Container
	in        *bufio.Reader
	out       io.Writer
}

func newCLI(container *app.Container, in io.Reader, out io.Writer) *cli {
	return &cli{
		container: container,
		in:        bufio.NewReader(in),
		out:       out,
	}
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printUsage(c.out)
		return 2
	}

	var err error
	switch args[0] {
	case "generate":
		err = c.generate(ctx, args[1:])
	case "quiz":
		err = c.quiz(ctx, args[1:])
	case "export":
		err = c.export(ctx, args[1:])
	case "stats":
		err = c.stats(ctx, args[1:])
	case "help", "-h", "--help":
		printUsage(c.out)
		return 0
	default:
		errorColor.Fprintf(c.out, "unknown command %q\n\n", args[0])
		printUsage(c.out)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		errorColor.Fprintln(c.out, "error:", err)
		return 1
	}
	return 0
}

func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// ===== GENERATE =====

func (c *cli) generate(ctx context.Context, args []string) error {
	fs := c.newFlagSet("generate")
	in := fs.String("in", "", "document to read (.pdf, .docx or .txt)")
	out := fs.String("out", "", "write the deck here; the extension picks json, csv or xlsx")
	mode := fs.String("mode", "", "quiz mode: mixed, mcq, true_false or fill_blank")
	count := fs.Int("count", 0, "number of questions for -mode")
	mcq := fs.Int("mcq", -1, "number of multiple choice cards")
	trueFalse := fs.Int("tf", -1, "number of true/false cards")
	fillBlank := fs.Int("fill", -1, "number of fill-in-the-blank cards")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("generate needs -in")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	opts := models.GenerationOptions{Mode: models.QuizMode(*mode), Count: *count}
	if *mcq >= 0 || *trueFalse >= 0 || *fillBlank >= 0 {
		opts.Quotas = &models.Quotas{
			MCQ:       max(*mcq, 0),
			TrueFalse: max(*trueFalse, 0),
			FillBlank: max(*fillBlank, 0),
		}
	}

	result, err := c.container.Flashcards.GenerateFromFile(ctx, filepath.Base(*in), "", data, opts)
	if err != nil {
		return err
	}

	headerColor.Fprintf(c.out, "Generated %d flashcards from %s\n", len(result.Deck), filepath.Base(*in))
	c.printBreakdown(result.TypeBreakdown)
	if len(result.Keywords) > 0 {
		top := result.Keywords[:min(len(result.Keywords), 8)]
		tokens := make([]string, len(top))
		for i, kw := range top {
			tokens[i] = kw.Token
		}
		faintColor.Fprintf(c.out, "Keywords: %s\n", strings.Join(tokens, ", "))
	}
	if len(result.Deck) == 0 {
		warnColor.Fprintln(c.out, "Not enough content to build questions.")
		return nil
	}

	if *out == "" {
		return nil
	}
	return c.writeDeck(ctx, result.Deck, *out, "")
}

// ===== EXPORT / STATS =====

func (c *cli) export(ctx context.Context, args []string) error {
	fs := c.newFlagSet("export")
	deckPath := fs.String("deck", "", "deck to read (.json, .csv or .xlsx)")
	out := fs.String("out", "", "output file")
	format := fs.String("format", "", "json, csv or xlsx; defaults to the -out extension")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckPath == "" || *out == "" {
		return errors.New("export needs -deck and -out")
	}

	deck, err := c.loadDeck(ctx, *deckPath)
	if err != nil {
		return err
	}
	return c.writeDeck(ctx, deck, *out, models.ExportFormat(*format))
}

func (c *cli) stats(ctx context.Context, args []string) error {
	fs := c.newFlagSet("stats")
	deckPath := fs.String("deck", "", "deck to read (.json, .csv or .xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckPath == "" {
		return errors.New("stats needs -deck")
	}

	deck, err := c.loadDeck(ctx, *deckPath)
	if err != nil {
		return err
	}

	headerColor.Fprintf(c.out, "%s: %d flashcards\n", filepath.Base(*deckPath), len(deck))
	c.printBreakdown(deck.TypeBreakdown())
	return nil
}

func (c *cli) printBreakdown(breakdown map[models.CardType]int) {
	types := make([]string, 0, len(breakdown))
	for cardType := range breakdown {
		types = append(types, string(cardType))
	}
	sort.Strings(types)
	for _, cardType := range types {
		fmt.Fprintf(c.out, "  %-11s %d\n", cardType, breakdown[models.CardType(cardType)])
	}
}

// loadDeck imports a deck file, reporting skipped records as warnings.
func (c *cli) loadDeck(ctx context.Context, path string) (models.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := c.container.ImportExport.ImportDeckFromFile(ctx, filepath.Base(path), data)
	var ruleErr *services.BusinessRuleError
	if errors.As(err, &ruleErr) {
		rowErrs, _ := ruleErr.Context["errors"].([]models.ImportValidationError)
		c.warnSkipped(rowErrs)
		return nil, fmt.Errorf("%s contains no valid flashcards", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}
	c.warnSkipped(result.Summary.Errors)
	return result.Deck, nil
}

func (c *cli) warnSkipped(rowErrs []models.ImportValidationError) {
	for _, rowErr := range rowErrs {
		warnColor.Fprintf(c.out, "skipped row %d: %s\n", rowErr.Row, rowErr.Message)
	}
}

func (c *cli) writeDeck(ctx context.Context, deck models.Deck, path string, format models.ExportFormat) error {
	if format == "" {
		format = models.ExportFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	}
	result, err := c.container.ImportExport.Export(ctx, &models.ExportRequest{Format: format, Deck: deck})
	if err != nil {
		if services.IsValidation(err) {
			return fmt.Errorf("cannot export to %q: %w", path, err)
		}
		return err
	}
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		return err
	}
	successColor.Fprintf(c.out, "Wrote %d flashcards to %s\n", result.CardCount, path)
	return nil
}
