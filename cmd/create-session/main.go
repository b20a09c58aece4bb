// CLI tool to create a session in the database, optionally seeded with a
// weight-goal profile so the target is ready on first launch.
// Usage: go run ./cmd/create-session
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"lg/protein-plate-api/internal/nutrition"
	"lg/protein-plate-api/internal/session"
	"lg/protein-plate-api/internal/store"
)

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// readProfile asks for the weight-goal inputs. A blank current weight skips
// seeding entirely.
func readProfile(reader *bufio.Reader) (nutrition.Profile, error) {
	var p nutrition.Profile

	current := prompt(reader, "Current weight in kg (blank to skip): ")
	if current == "" {
		return p, nil
	}
	currentKg, err := strconv.ParseFloat(current, 64)
	if err != nil {
		return p, fmt.Errorf("current weight: %w", err)
	}
	targetKg, err := strconv.ParseFloat(prompt(reader, "Target weight in kg: "), 64)
	if err != nil {
		return p, fmt.Errorf("target weight: %w", err)
	}
	months, err := strconv.Atoi(prompt(reader, "Timeline in months: "))
	if err != nil {
		return p, fmt.Errorf("timeline: %w", err)
	}
	activity, err := nutrition.ParseActivityLevel(prompt(reader, "Activity (sedentary, moderate, active): "))
	if err != nil {
		return p, err
	}

	return p.
		WithCurrentWeight(nutrition.Weight{Value: currentKg, Unit: nutrition.Kilograms}).
		WithTargetWeight(nutrition.Weight{Value: targetKg, Unit: nutrition.Kilograms}).
		WithTimelineMonths(months).
		WithActivityLevel(activity), nil
}

// newSession builds the session from the answers on reader. Nothing is
// written until every answer has been accepted.
func newSession(reader *bufio.Reader) (*session.Session, error) {
	p, err := readProfile(reader)
	if err != nil {
		return nil, fmt.Errorf("invalid answer: %w", err)
	}
	s := session.New(uuid.New(), session.Options{})
	if p.IsEmpty() {
		return s, nil
	}
	if err := s.UpdateProfile(p); err != nil {
		return nil, fmt.Errorf("seeding profile: %w", err)
	}
	return s, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	s, err := newSession(bufio.NewReader(os.Stdin))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.NewPostgres(pool, session.Options{})
	if err := st.Save(ctx, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSession created successfully!\n")
	fmt.Printf("  SESSION_ID: %s\n", s.ID)
	if s.Target != nil {
		fmt.Printf("  Protein:    %dg/day\n", s.Target.ProteinGrams)
		fmt.Printf("  Goal date:  %s\n", s.Target.FormatGoalDate())
	}
}
