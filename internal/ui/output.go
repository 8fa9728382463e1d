package ui

import (
	"bufio"
	"fmt"
	"strings"
)

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorGreen, SymbolCheck, ColorReset, msg, ColorReset)
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorRed, SymbolCross, ColorReset, msg, ColorReset)
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorBlue, SymbolInfo, ColorReset, msg, ColorReset)
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorYellow, SymbolWarning, ColorReset, msg, ColorReset)
}

// PrintLaunch prints a process launch message.
func PrintLaunch(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorPurple, SymbolRocket, ColorReset, msg, ColorReset)
}

// Confirm asks a yes/no question on stdout and reads one answer line from in.
// Anything other than y/yes (case-insensitive) is a no, including EOF.
// Bytes after the answer line stay buffered in in.
func Confirm(in *bufio.Reader, question string) bool {
	fmt.Printf("%s%s%s %s [y/N]: ", ColorCyan, BulletArrow, ColorReset, question)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
