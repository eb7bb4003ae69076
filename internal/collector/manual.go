package collector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"oddscli/internal/schema"
	"oddscli/internal/validation"
	"oddscli/pkg/contracts/domain"
)

// ErrNoInput is returned when the operator closes the input stream mid-prompt.
var ErrNoInput = errors.New("input closed")

// Prompter asks the operator for values on a terminal
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Number prompts until the answer parses as a number. Thousands separators, "$" and "%"
// are accepted and stripped from the returned text.
func (p *Prompter) Number(prompt string) (string, error) {
	for {
		answer, err := p.readLine(prompt)
		if err != nil {
			return "", err
		}
		v, err := validation.ParseNumber(answer)
		if err != nil {
			fmt.Fprintln(p.out, "Please enter a valid number.")
			continue
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
}

// Confirm asks a yes/no question. Only "y" and "yes" count as yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.readLine(question + " (yes/no): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Choose lists options numbered from 1 and prompts until a valid number is picked.
func (p *Prompter) Choose(title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("nothing to choose from")
	}
	fmt.Fprintln(p.out, title)
	for i, option := range options {
		fmt.Fprintf(p.out, "%d: %s\n", i+1, option)
	}
	for {
		answer, err := p.readLine("Enter a number: ")
		if err != nil {
			return -1, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintln(p.out, "Invalid choice. Please try again.")
			continue
		}
		return n - 1, nil
	}
}

// Snapshot prompts for every field of the day's record in schema order.
func (p *Prompter) Snapshot(date time.Time) (domain.RawSnapshot, error) {
	raw := domain.RawSnapshot{
		Date:       domain.NormalizeDate(date).Format(domain.DateLayout),
		States:     make(map[string]domain.RawStateEntry, len(schema.States)),
		Indicators: make(map[string]string, len(schema.Indicators)),
	}
	fmt.Fprintf(p.out, "Enter the values for %s\n", raw.Date)

	var err error
	if raw.USRepublicanOdds, err = p.Number("US Republican odds (%): "); err != nil {
		return raw, err
	}
	if raw.USTotalAmount, err = p.Number("US total amount ($): "); err != nil {
		return raw, err
	}

	for _, state := range schema.States {
		var entry domain.RawStateEntry
		if entry.RepublicanOdds, err = p.Number(state + " Republican odds (%): "); err != nil {
			return raw, err
		}
		if entry.TotalAmount, err = p.Number(state + " total amount ($): "); err != nil {
			return raw, err
		}
		raw.States[state] = entry
	}

	for _, symbol := range schema.Indicators {
		if raw.Indicators[symbol], err = p.Number(symbol + " price: "); err != nil {
			return raw, err
		}
	}
	return raw, nil
}
