package compiler

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jakoblorz/go-combine/internal/models"
)

// diagnosticLine matches "file:line[:col]: message".
var diagnosticLine = regexp.MustCompile(`^([^\s:][^:]*):(\d+)(?::(\d+))?: (.+)$`)

// ParseDiagnostics extracts compiler messages from output. Messages that
// start with "error:" or "warning:" get that severity; other messages get
// fallback, or are dropped when fallback is empty.
func ParseDiagnostics(r io.Reader, fallback models.Severity) []models.Diagnostic {
	var diags []models.Diagnostic

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := diagnosticLine.FindStringSubmatch(strings.TrimRight(scanner.Text(), "\r"))
		if m == nil {
			continue
		}

		d := models.Diagnostic{File: m[1]}
		d.Line, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			d.Column, _ = strconv.Atoi(m[3])
		}

		msg := m[4]
		switch {
		case strings.HasPrefix(msg, "error: "):
			d.Severity = models.SeverityError
			msg = strings.TrimPrefix(msg, "error: ")
		case strings.HasPrefix(msg, "warning: "):
			d.Severity = models.SeverityWarning
			msg = strings.TrimPrefix(msg, "warning: ")
		case fallback != "":
			d.Severity = fallback
		default:
			continue
		}
		d.Message = msg
		diags = append(diags, d)
	}
	return diags
}
