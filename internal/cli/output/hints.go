package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"login":           {"status", "dashboard"},
	"signup":          {"verification"},
	"logout":          {"login"},
	"status":          {"dashboard", "verification"},
	"verification":    {"status"},
	"dashboard":       {"payments list", "profile show"},
	"payments create": {"payments list"},
	"departments":     {"pay"},
	"pay":             {"verify transaction <reference>"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "studentpay " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
