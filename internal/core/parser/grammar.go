// Package parser normalizes the lookup provider's free-text reports.
//
// Reports are sections separated by a literal marker line, and each section
// holds bullet lines of the form "• Label: value". The label vocabulary is a
// contract with the provider; FormatVersion is bumped whenever it changes and
// the fixtures under testdata capture one real sample per report kind.
package parser

import (
	"strings"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

const FormatVersion = "1"

// InvalidResponseError is returned for input that is not a non-empty report.
// It carries the text received so callers can surface it for diagnosis.
type InvalidResponseError struct {
	Text string
}

func (e *InvalidResponseError) Error() string {
	return "resposta inválida da API"
}

func (e *InvalidResponseError) Is(target error) bool {
	return target == domain.ErrInvalidResponse
}

func checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &InvalidResponseError{Text: text}
	}
	return nil
}

type field struct {
	label  string
	digits bool
}

type binding struct {
	field
	dst *string
}

// sections splits text on marker and drops the preamble before the first one.
func sections(text, marker string) []string {
	parts := strings.Split(text, marker)
	return parts[1:]
}

// extract returns the value of the first line starting with "label:".
// Lines whose value is empty, or has no leading digits for digit fields, are
// skipped.
func extract(section string, f field) (string, bool) {
	prefix := f.label + ":"
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		value := strings.TrimSpace(line[len(prefix):])
		if f.digits {
			value = leadingDigits(value)
		}
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// fill extracts every binding from section and reports how many were found.
func fill(section string, bindings []binding) int {
	found := 0
	for _, b := range bindings {
		if v, ok := extract(section, b.field); ok {
			*b.dst = v
			found++
		}
	}
	return found
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
