package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"skipper/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// renderCheckLine formats one preflight check as an indented, aligned line:
//
//	config:        [OK] configuration valid
func renderCheckLine(check preflight.Check, colorize bool) string {
	badge, color := checkBadge(check.Status)
	line := fmt.Sprintf("  %-14s [%s]", check.Name+":", badge)
	if check.Detail != "" {
		line += " " + check.Detail
	}
	if colorize && color != "" {
		return color + line + ansiReset
	}
	return line
}

func checkBadge(status preflight.Status) (label, color string) {
	switch status {
	case preflight.StatusOK:
		return "OK", ansiGreen
	case preflight.StatusWarn:
		return "WARN", ansiYellow
	default:
		return "ERROR", ansiRed
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
