package plan

import "strings"

//shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + singleQuoteEscape(s) + "'"
}

func singleQuoteEscape(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

var doubleQuoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

//doubleQuoteEscape escapes s for use inside a double-quoted string.
func doubleQuoteEscape(s string) string {
	return doubleQuoteReplacer.Replace(s)
}

//localPath renders a path below the root variable of a side, e.g. "$LEFTDIR"'/a/x.txt'.
func localPath(rootVar, rel string) string {
	if rel == "" {
		return `"$` + rootVar + `"`
	}
	return `"$` + rootVar + `"` + shellQuote(rel)
}

//remotePath renders a path for a command string that a remote shell parses again.
//The root variable is expanded locally and the whole path stays single-quoted remotely.
func remotePath(rootVar, rel string) string {
	return `'$` + rootVar + doubleQuoteEscape(singleQuoteEscape(rel)) + `'`
}
