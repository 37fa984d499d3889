// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gridspec

import "strings"

// ParseArgs derives the parameter assignment from a rendered command line.
// Tokens of the form --name=value map to string values, a bare --name maps to
// boolean true, and everything else is ignored. It is used for runfile lines
// that did not come from an expansion in this process (for example, lines
// added by hand), where the structured assignment is not available.
func ParseArgs(command string) map[string]any {
	parameters := make(map[string]any)

	for _, token := range splitShellWords(command) {
		if !strings.HasPrefix(token, "-") {
			continue
		}

		name := strings.TrimLeft(token, "-")
		if name == "" {
			continue
		}

		if k, v, found := strings.Cut(name, "="); found {
			parameters[k] = v
			continue
		}

		parameters[name] = true
	}

	return parameters
}

// splitShellWords splits a command line on whitespace, keeping single- or
// double-quoted substrings intact. Quotes are stripped from the result.
func splitShellWords(s string) []string {
	var (
		words   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}

			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()

				inWord = false
			}
		default:
			current.WriteRune(r)

			inWord = true
		}
	}

	if inWord {
		words = append(words, current.String())
	}

	return words
}
