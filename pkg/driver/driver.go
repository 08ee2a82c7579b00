// Package driver runs expressions read one per line and renders a report for
// each of them.
package driver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// Format selects how reports are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// Report is the outcome of one input line. Postfix and Result are only set
// when Err is nil.
type Report struct {
	Input   string
	Postfix expr.Postfix
	Result  int64
	Err     error
}

// Summary counts the lines handled by Run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
}

// Process runs a single trimmed, non-blank expression.
func Process(line string) Report {
	calc, err := expr.Calculate(line)
	if err != nil {
		return Report{Input: line, Err: err}
	}
	return Report{Input: line, Postfix: calc.Postfix, Result: calc.Result}
}

// Run reads expressions from r, one per line, and writes a report for each
// non-blank line to w. A failing expression never stops the run; only read
// or write errors and context cancellation do. Lines have no length limit.
func Run(ctx context.Context, r io.Reader, w io.Writer, format Format) (Summary, error) {
	var sum Summary
	reader := bufio.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return sum, fmt.Errorf("reading input: %w", readErr)
		}

		if line := expr.Trim(raw); line != "" {
			rep := Process(line)
			sum.Processed++
			if rep.Err != nil {
				sum.Failed++
			} else {
				sum.Succeeded++
			}

			if err := Write(w, rep, format); err != nil {
				return sum, fmt.Errorf("writing report: %w", err)
			}
		}

		if readErr == io.EOF {
			return sum, nil
		}
	}
}

// Write renders rep to w in the given format.
func Write(w io.Writer, rep Report, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, rep)
	}
	_, err := io.WriteString(w, RenderText(rep))
	return err
}

// RenderText renders rep as an Input/Postfix/Result block, or an
// Input/Error block, followed by a blank line. Every postfix token is
// followed by a single space.
func RenderText(rep Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input: %s\n", rep.Input)
	if rep.Err != nil {
		fmt.Fprintf(&sb, "Error: %s\n", rep.Err.Error())
	} else {
		sb.WriteString("Postfix: ")
		for _, tok := range rep.Postfix {
			sb.WriteString(tok)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "Result: %d\n", rep.Result)
	}
	sb.WriteByte('\n')
	return sb.String()
}

type jsonReport struct {
	Input   string                 `json:"input"`
	Postfix []string               `json:"postfix,omitempty"`
	Result  *int64                 `json:"result,omitempty"`
	Error   map[string]interface{} `json:"error,omitempty"`
}

func writeJSON(w io.Writer, rep Report) error {
	out := jsonReport{Input: rep.Input}
	if rep.Err != nil {
		if ee := types.AsExpressionError(rep.Err); ee != nil {
			out.Error = ee.ToMap()
		} else {
			out.Error = map[string]interface{}{"message": rep.Err.Error()}
		}
	} else {
		result := rep.Result
		out.Postfix = rep.Postfix
		out.Result = &result
	}
	return json.NewEncoder(w).Encode(out)
}
