package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"mingas-api/internal/client"
)

const displayLayout = "02/01/2006 15:04"

func formatDate(t time.Time) string {
	return t.Local().Format(displayLayout)
}

// fail prints a gateway failure: its message, then each validation
// message as returned.
func (a *app) fail(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	fmt.Fprintln(a.errOut, apiErr.Message)
	for _, msg := range apiErr.Errors {
		fmt.Fprintf(a.errOut, "  - %s\n", msg)
	}
	return errReported
}

// confirm asks a yes/no question on the app's input. Anything but an
// explicit yes declines.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
