package formatting

import "strings"

const commentMarker = "#COMMENT#"

var placeholders = []string{"[Your Name]", "Your name"}

// Cleanup applies the rules every delivered text goes through.
func Cleanup(text string, category Category) string {
	text = dropSubjectLine(text)
	if category == CategoryTerminal {
		text = terminalCommand(text)
	}
	return text
}

func dropSubjectLine(text string) string {
	first, rest, _ := strings.Cut(text, "\n")
	first = strings.TrimSuffix(first, "\r")
	if !strings.HasPrefix(strings.ToLower(first), "subject:") {
		return text
	}
	return strings.TrimSpace(rest)
}

// terminalCommand keeps only the command on the first line.
func terminalCommand(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	command, _, _ := strings.Cut(first, commentMarker)
	return strings.TrimSpace(command)
}

// replacePlaceholders substitutes the signature tokens a model tends to leave
// behind. An empty name leaves them untouched.
func replacePlaceholders(text, name string) string {
	if name == "" {
		return text
	}
	for _, token := range placeholders {
		text = strings.ReplaceAll(text, token, name)
	}
	return text
}
