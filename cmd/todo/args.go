package main

import (
	"regexp"
	"slices"
	"strings"
)

// positionFlags take one or more task positions.
var positionFlags = []string{"-r", "--remove", "--start", "--stop", "--complete"}

var positionArg = regexp.MustCompile(`^\d+$`)

// expandPositionArgs lets position flags take space-separated values:
// "--remove 1 3" becomes "--remove 1 --remove 3". Trailing arguments are the
// subtask text when --add-subtask is given, so nothing is expanded then.
func expandPositionArgs(args []string) []string {
	for _, a := range args {
		if a == "--" {
			break
		}
		if a == "--add-subtask" || strings.HasPrefix(a, "--add-subtask=") {
			return args
		}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		out = append(out, a)

		name, _, inline := strings.Cut(a, "=")
		if !slices.Contains(positionFlags, name) {
			continue
		}
		if !inline && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
		for i+1 < len(args) && positionArg.MatchString(args[i+1]) {
			i++
			out = append(out, name, args[i])
		}
	}
	return out
}
