// Package diagnose invokes the external type checker and turns its output
// into structured, position-addressed diagnostic records.
package diagnose

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Record is one checker-reported problem. Records are produced fresh by each
// collection and never persisted beyond a single remediation cycle.
type Record struct {
	FilePath string
	Line     int
	Column   int
	Code     string
	Message  string
}

// String renders the record in the checker's own single-line format.
func (r Record) String() string {
	return fmt.Sprintf("%s(%d,%d): error %s: %s", r.FilePath, r.Line, r.Column, r.Code, r.Message)
}

// diagnosticLine matches the checker's machine output format:
//
//	path/to/file.ts(12,34): error TS2339: Property 'x' does not exist ...
var diagnosticLine = regexp.MustCompile(`^(.+)\((\d+),(\d+)\): (?:error|warning) (TS\d+): (.*)$`)

// ParseOutput parses checker output into records. Indented continuation lines
// are folded into the preceding record's message. Unrecognized lines are
// ignored; the checker mixes diagnostics with npm/npx noise on some setups.
func ParseOutput(output string) []Record {
	var records []Record

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "" {
			continue
		}

		match := diagnosticLine.FindStringSubmatch(trimmed)
		if match == nil {
			if len(records) > 0 && strings.HasPrefix(trimmed, " ") {
				last := &records[len(records)-1]
				last.Message += "\n" + strings.TrimSpace(trimmed)
			}

			continue
		}

		lineNum, _ := strconv.Atoi(match[2])
		colNum, _ := strconv.Atoi(match[3])

		records = append(records, Record{
			FilePath: match[1],
			Line:     lineNum,
			Column:   colNum,
			Code:     match[4],
			Message:  match[5],
		})
	}

	return records
}

// Messages returns the message text of each record, in order.
func Messages(records []Record) []string {
	messages := make([]string, len(records))
	for i, record := range records {
		messages[i] = record.Message
	}

	return messages
}
