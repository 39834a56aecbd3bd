// Package formatting turns a finalized transcript into the text that gets
// delivered, optionally rewritten by a TextFormatter for the focused app.
package formatting

import "strings"

// Category is the kind of application receiving the text.
type Category string

const (
	CategoryDefault  Category = "default"
	CategoryEmail    Category = "email"
	CategoryMessage  Category = "message"
	CategoryChat     Category = "chat"
	CategoryTerminal Category = "terminal"
)

// ParseCategory maps a configured category name, falling back to CategoryDefault.
func ParseCategory(raw string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryEmail, CategoryMessage, CategoryChat, CategoryTerminal:
		return c
	default:
		return CategoryDefault
	}
}

// Formality is the requested tone.
type Formality int

const (
	Casual Formality = iota
	Auto
	Formal
)

// FormalityFromIndex maps the persisted profile index. Anything other than
// 0 or 2 means auto.
func FormalityFromIndex(index int) Formality {
	switch index {
	case 0:
		return Casual
	case 2:
		return Formal
	default:
		return Auto
	}
}

func (f Formality) String() string {
	switch f {
	case Casual:
		return "casual"
	case Formal:
		return "formal"
	default:
		return "auto"
	}
}

// Context is the snapshot taken when a transcript finalizes.
type Context struct {
	TargetApp string
	Category  Category
	Formality Formality
}

// ContextFor resolves appID through categories, keyed by lowercased window class.
func ContextFor(appID string, categories map[string]string, formality Formality) Context {
	app := strings.ToLower(strings.TrimSpace(appID))
	return Context{
		TargetApp: app,
		Category:  ParseCategory(categories[app]),
		Formality: formality,
	}
}

// Names are the user's sign-off names.
type Names struct {
	Casual string
	Formal string
}

// For returns the name matching formality. Auto uses the casual name.
func (n Names) For(formality Formality) string {
	if formality == Formal {
		return n.Formal
	}
	return n.Casual
}
