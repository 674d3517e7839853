// Package prompt reads interactive answers from a line-oriented terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ErrCancelled is returned when input ends before an answer is given.
var ErrCancelled = errors.New("cancelled")

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer, or def for an empty line.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Confirm asks a yes/no question until it gets a recognizable answer.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		_, _ = fmt.Fprintln(p.out, "Error: invalid input")
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ParseSelection reads "all" or a comma-separated list of numbers and
// inclusive ranges such as "1,3,5-7". Only numbers in 1..count are kept;
// unparseable parts are skipped.
func ParseSelection(input string, count int) ([]int, bool) {
	if strings.EqualFold(strings.TrimSpace(input), "all") {
		return nil, true
	}
	seen := map[int]struct{}{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, isRange := strings.Cut(part, "-"); isRange {
			start, err1 := strconv.Atoi(strings.TrimSpace(from))
			end, err2 := strconv.Atoi(strings.TrimSpace(to))
			if err1 != nil || err2 != nil {
				continue
			}
			for i := max(start, 1); i <= min(end, count); i++ {
				seen[i] = struct{}{}
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > count {
			continue
		}
		seen[n] = struct{}{}
	}
	picked := make([]int, 0, len(seen))
	for n := range seen {
		picked = append(picked, n)
	}
	sort.Ints(picked)
	return picked, false
}
