package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/quiz"
)

const quizHelp = "Answer with a letter (mcq), t/f (true_false) or a word (fill_blank). " +
	"Commands: :n next, :p previous, :r reset, :s shuffle, :q finish."

func (c *cli) quiz(ctx context.Context, args []string) error {
	fs := c.newFlagSet("quiz")
	deckPath := fs.String("deck", "", "deck to read (.json, .csv or .xlsx)")
	shuffle := fs.Bool("shuffle", false, "shuffle the deck before starting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckPath == "" {
		return errors.New("quiz needs -deck")
	}

	deck, err := c.loadDeck(ctx, *deckPath)
	if err != nil {
		return err
	}
	session, err := quiz.NewSession(uuid.NewString(), deck)
	if err != nil {
		return err
	}
	if *shuffle {
		session.Shuffle(c.container.Random.Shuffle)
	}

	faintColor.Fprintln(c.out, quizHelp)
	for !session.Completed() {
		c.printCard(session)

		line, readErr := c.readLine()
		if line == "" && readErr != nil {
			break
		}

		switch line {
		case ":q":
			c.finish(session)
			return nil
		case ":n":
			c.report(session.Next())
			continue
		case ":p":
			c.report(session.Previous())
			continue
		case ":r":
			session.Reset()
			continue
		case ":s":
			session.Shuffle(c.container.Random.Shuffle)
			continue
		}

		answer, err := parseAnswer(session.Current(), line)
		if err != nil {
			warnColor.Fprintln(c.out, err)
			continue
		}
		result, err := session.Submit(answer)
		if errors.Is(err, quiz.ErrAlreadyAnswered) {
			c.report(err)
			c.report(session.Next())
			continue
		}
		if err != nil {
			c.report(err)
			continue
		}
		c.printResult(result)

		if session.Answered() == session.Len() {
			break
		}
		if errors.Is(session.Next(), quiz.ErrNoNextCard) {
			warnColor.Fprintln(c.out, "Some cards are unanswered. Use :p to go back or :q to finish.")
		}
	}

	c.finish(session)
	return nil
}

func (c *cli) readLine() (string, error) {
	fmt.Fprint(c.out, "> ")
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), err
}

func (c *cli) printCard(session *quiz.Session) {
	card := session.Current()
	fmt.Fprintln(c.out)
	headerColor.Fprintf(c.out, "Question %d/%d [%s]\n", session.Position()+1, session.Len(), card.Type)
	fmt.Fprintln(c.out, card.Question)

	switch card.Type {
	case models.CardMCQ:
		for i, option := range card.Options {
			fmt.Fprintf(c.out, "  %c) %s\n", 'A'+i, option)
		}
	case models.CardTrueFalse:
		fmt.Fprintln(c.out, "  (t)rue or (f)alse")
	}

	if result, answered := session.Result(); answered {
		faintColor.Fprintf(c.out, "Already answered: %s\n", result.Given)
	}
}

func (c *cli) printResult(result quiz.AnswerResult) {
	if result.Correct {
		successColor.Fprintln(c.out, "Correct!")
	} else {
		errorColor.Fprintf(c.out, "Incorrect. The correct answer is %s.\n", result.CorrectAnswer)
	}
	if result.Explanation != "" {
		faintColor.Fprintln(c.out, result.Explanation)
	}
}

func (c *cli) report(err error) {
	if err != nil {
		warnColor.Fprintln(c.out, err)
	}
}

func (c *cli) finish(session *quiz.Session) {
	stats := session.Finish()
	fmt.Fprintln(c.out)
	headerColor.Fprintln(c.out, "Quiz complete")
	fmt.Fprintf(c.out, "Score: %d/%d answered (%d cards)\n", stats.Score, stats.Answered, stats.Total)
	fmt.Fprintf(c.out, "Accuracy: %.1f%%\n", stats.Accuracy)
	if stats.Feedback == "" {
		return
	}
	feedbackColor := successColor
	if stats.Accuracy < 70 {
		feedbackColor = warnColor
	}
	feedbackColor.Fprintln(c.out, stats.Feedback)
}

// parseAnswer reads a typed answer for the card's type.
func parseAnswer(card models.Flashcard, input string) (quiz.Answer, error) {
	switch card.Type {
	case models.CardMCQ:
		index, err := parseOption(input, len(card.Options))
		if err != nil {
			return quiz.Answer{}, err
		}
		return quiz.Answer{Option: &index}, nil
	case models.CardTrueFalse:
		var value bool
		switch strings.ToLower(input) {
		case "t", "true", "y", "yes":
			value = true
		case "f", "false", "n", "no":
			value = false
		default:
			return quiz.Answer{}, errors.New("answer t or f")
		}
		return quiz.Answer{Value: &value}, nil
	default:
		if input == "" {
			return quiz.Answer{}, errors.New("type the missing word")
		}
		return quiz.Answer{Text: input}, nil
	}
}

func parseOption(input string, optionCount int) (int, error) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if len(input) == 1 && input[0] >= 'A' && int(input[0]-'A') < optionCount {
		return int(input[0] - 'A'), nil
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= optionCount {
		return n - 1, nil
	}
	return 0, fmt.Errorf("choose A-%c", 'A'+optionCount-1)
}
