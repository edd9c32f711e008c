package main

import (
	"fmt"
	"os"
)

// ANSI codes for terminal feedback; --no-color suppresses them.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
)

// report writes one marked feedback line to stderr. Stdout stays free for
// data, in particular the MCP stdio transport.
func report(color, mark, format string, args ...any) {
	msg := mark + " " + fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintln(os.Stderr, msg)
		return
	}
	fmt.Fprintln(os.Stderr, color+msg+ansiReset)
}

func printSuccess(format string, args ...any) { report(ansiGreen, "✓", format, args...) }

func printError(format string, args ...any) { report(ansiRed, "✗", format, args...) }

func printWarning(format string, args ...any) { report(ansiYellow, "⚠", format, args...) }

func printStep(format string, args ...any) { report(ansiCyan, "→", format, args...) }

// printStatus renders one "label: value" row of the status report.
func printStatus(label, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", label, val)
		return
	}
	fmt.Fprintf(os.Stderr, "  %s%s:%s %s\n", ansiBold, label, ansiReset, val)
}
