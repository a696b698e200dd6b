// Package clilog renders a *logger.Log to the terminal using pterm, the way
// the rest of this domain's CLIs surface structured results to a human
// instead of printing bare fmt.Println lines.
package clilog

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/rintaro/es6link/internal/logger"
)

// Print renders every message in log, sorted by file and position, and
// returns the number of errors printed (zero means the run is clean).
func Print(log *logger.Log) int {
	errorCount := 0
	for _, msg := range log.Sorted() {
		text := formatMsg(msg)
		switch msg.Kind {
		case logger.Error:
			errorCount++
			pterm.Error.Println(text)
		case logger.Warning:
			pterm.Warning.Println(text)
		}
	}
	return errorCount
}

func formatMsg(msg logger.Msg) string {
	if msg.Data.Location == nil {
		return fmt.Sprintf("%s [%s]", msg.Data.Text, msg.ID.Code())
	}
	loc := msg.Data.Location
	return fmt.Sprintf("%s:%d:%d: %s [%s]", loc.File, loc.Line, loc.Column, msg.Data.Text, msg.ID.Code())
}

// Summary prints a one-line pass/fail footer, in the style of a CI job
// summary: green on success, red with the error count otherwise.
func Summary(errorCount int) {
	if errorCount == 0 {
		pterm.Success.Println("no errors")
		return
	}
	pterm.Error.Printfln("%d error(s)", errorCount)
}
