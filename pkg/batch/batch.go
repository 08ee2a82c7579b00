// Package batch loads YAML/JSON files of named expressions with expected
// outcomes and checks them against the calculator.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// MaxCases is the maximum number of cases per file.
const MaxCases = 10000

// File is a parsed batch definition.
type File struct {
	Cases []Case `yaml:"cases"`
}

// Case is a single expression and what it should produce.
type Case struct {
	Name        string `yaml:"name"`
	Expression  string `yaml:"expression"`
	Expect      *int64 `yaml:"expect"`
	ExpectError string `yaml:"expectError"`
}

// Outcome is the result of checking one case.
type Outcome struct {
	Case    Case
	Postfix expr.Postfix
	Result  int64
	Err     error
	Passed  bool
	Reason  string // why the case failed, empty when Passed
}

// ParseFile reads and parses a batch file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML or JSON batch definition.
func Parse(source []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(source, &f); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("batch file defines no cases")
	}
	if len(f.Cases) > MaxCases {
		return nil, fmt.Errorf("batch file has %d cases, exceeding the limit of %d", len(f.Cases), MaxCases)
	}

	for i := range f.Cases {
		c := &f.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if c.Expression == "" {
			return nil, fmt.Errorf("case %q: expression is required", c.Name)
		}
		if c.Expect != nil && c.ExpectError != "" {
			return nil, fmt.Errorf("case %q: expect and expectError are mutually exclusive", c.Name)
		}
		if c.ExpectError != "" {
			if _, ok := types.ParseKind(c.ExpectError); !ok {
				return nil, fmt.Errorf("case %q: unknown error kind %q", c.Name, c.ExpectError)
			}
		}
	}

	return &f, nil
}

// Run evaluates every case in order.
func Run(f *File) []Outcome {
	outcomes := make([]Outcome, len(f.Cases))
	for i, c := range f.Cases {
		outcomes[i] = check(c)
	}
	return outcomes
}

// Failures counts outcomes that did not pass.
func Failures(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Passed {
			n++
		}
	}
	return n
}

func check(c Case) Outcome {
	out := Outcome{Case: c}

	calc, err := expr.Calculate(c.Expression)
	if err != nil {
		out.Err = err
	} else {
		out.Postfix = calc.Postfix
		out.Result = calc.Result
	}

	switch {
	case c.ExpectError != "":
		if err == nil {
			out.Reason = fmt.Sprintf("expected %s, got result %d", c.ExpectError, calc.Result)
		} else if !types.IsKind(err, types.ErrorKind(c.ExpectError)) {
			out.Reason = fmt.Sprintf("expected %s, got error: %v", c.ExpectError, err)
		}
	case err != nil:
		out.Reason = fmt.Sprintf("unexpected error: %v", err)
	case c.Expect != nil && *c.Expect != calc.Result:
		out.Reason = fmt.Sprintf("expected %d, got %d", *c.Expect, calc.Result)
	}

	out.Passed = out.Reason == ""
	return out
}
