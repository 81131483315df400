// Package cmdlang is the line-oriented command grammar shared by the REPL
// and the TCP server; the HTTP server routes by URL path and does not use
// it. It is adapted from
// the teacher project's internal/parser package, regrammared for blob-store
// verbs (ALLOC/READ/WRITE/DELETE/...) instead of SQL-ish table verbs.
package cmdlang

import (
	"fmt"
	"strings"
)

// Command is a parsed command line: an upper-cased verb plus its arguments.
type Command struct {
	Name string
	Args []string
}

// Parse tokenizes line on whitespace and validates arg counts for each known
// verb. Commands whose last argument is free-form text (WRITE, WRITEROOT,
// PUT) join the remaining fields back together with single spaces, the way
// the teacher's INSERT/UPDATE handled multi-word values.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, fmt.Errorf("cmdlang: empty command")
	}
	fields := strings.Fields(line)
	name := strings.ToUpper(fields[0])
	args := fields[1:]

	switch name {
	case "ALLOC", "LS", "HELP", "EXIT", "QUIT", "READROOT":
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no args", name)
		}
		args = nil
	case "READ", "DELETE", "GET", "RM", "STAT":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%s requires 1 arg", name)
		}
	case "WRITE":
		if len(args) < 2 {
			return Command{}, fmt.Errorf("WRITE requires <handle> <data>")
		}
		args = []string{args[0], strings.Join(args[1:], " ")}
	case "WRITEROOT":
		if len(args) < 1 {
			return Command{}, fmt.Errorf("WRITEROOT requires <data>")
		}
		args = []string{strings.Join(args, " ")}
	case "PUT":
		if len(args) < 2 {
			return Command{}, fmt.Errorf("PUT requires <name> <data>")
		}
		args = []string{args[0], strings.Join(args[1:], " ")}
	case "AUTH":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("AUTH requires 1 arg")
		}
	default:
		return Command{}, fmt.Errorf("unknown command: %s", name)
	}
	return Command{Name: name, Args: args}, nil
}
