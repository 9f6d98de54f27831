// Package logger prints tagged, colorized console output.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + colorReset
}

func logf(color, tag, msg string) {
	fmt.Printf("%s %s %s\n", time.Now().Format("15:04:05"), paint(color, "["+tag+"]"), msg)
}

// Info logs a neutral message under a tag.
func Info(tag, msg string) { logf(colorBlue, tag, msg) }

// Success logs a completed step.
func Success(tag, msg string) { logf(colorGreen, tag, msg) }

// Warn logs a recoverable problem.
func Warn(tag, msg string) { logf(colorYellow, tag, msg) }

// Error logs a failure.
func Error(tag, msg string) { logf(colorRed, tag, msg) }

// Banner prints the startup header.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(colorBold+colorCyan, "ratnav — rescue dispatch jump calculator"))
	fmt.Printf("%s\n\n", paint(colorCyan, "version "+version))
}

// Section prints a visual divider with a title.
func Section(title string) {
	fmt.Printf("\n%s\n", paint(colorBold, "== "+title+" =="))
}

// Stats prints one key/value line, aligned for scanning.
func Stats(key string, value interface{}) {
	fmt.Printf("  %-24s %v\n", key, value)
}
