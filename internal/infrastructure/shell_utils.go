package infrastructure

import "strings"

// shellSafe characters never need quoting
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%+=:,./-_"

// ShellEscape quotes a single argument for display in logs so that the
// logged command line can be copy-pasted into a POSIX shell.
func ShellEscape(arg string) string {
	if arg == "" {
		return "''"
	}
	needsQuoting := false
	for _, r := range arg {
		if !strings.ContainsRune(shellSafe, r) {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders a binary and its arguments as one loggable line
func ShellEscapeCommand(binary string, args ...string) string {
	var b strings.Builder
	b.WriteString(ShellEscape(binary))
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(ShellEscape(arg))
	}
	return b.String()
}
