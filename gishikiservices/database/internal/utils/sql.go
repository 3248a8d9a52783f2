package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var spaceFinder = regexp.MustCompile(`\s{2,}`)

// Prepare normalizes whitespace and, for drivers that need them, rewrites
// positional ? placeholders into $1, $2, ...
func Prepare(statement string, numberedParams bool) string {
	statement = strings.TrimSpace(spaceFinder.ReplaceAllString(statement, " "))
	if !numberedParams {
		return statement
	}

	counter := 0

	return walkPlaceholders(statement, func() string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// CountPlaceholders counts the positional ? placeholders outside quotes.
func CountPlaceholders(statement string) int {
	counter := 0

	walkPlaceholders(statement, func() string {
		counter++
		return "?"
	})

	return counter
}

// walkPlaceholders replaces every ? that is not inside a quoted identifier or
// string literal with the result of replace.
func walkPlaceholders(statement string, replace func() string) string {
	var (
		builder strings.Builder
		quote   rune
	)

	for _, r := range statement {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			builder.WriteString(replace())

			continue
		}

		builder.WriteRune(r)
	}

	return builder.String()
}
