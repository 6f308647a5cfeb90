package toolchain

import "strings"

// programArgs splits invocationInput on whitespace and drops the launch
// command, if the input starts with one the language recognises. The rest
// of the tokens are passed to the program verbatim.
func programArgs(invocationInput string, launchPrefixLen func(tokens []string) int) []string {
	tokens := strings.Fields(invocationInput)
	n := 0
	if launchPrefixLen != nil {
		n = launchPrefixLen(tokens)
	}
	if n > len(tokens) {
		n = len(tokens)
	}
	return tokens[n:]
}
