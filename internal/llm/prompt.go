package llm

import (
	"fmt"
	"strings"

	"github.com/rbright/vox/internal/formatting"
)

const signaturePlaceholder = "Your name"

// Prompt is the system/user message pair sent for one rewrite.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the instructions for req's category and tone.
func BuildPrompt(req formatting.Request) Prompt {
	fc := req.Context
	target := fc.TargetApp
	if target == "" {
		target = "unknown"
	}

	system := strings.Join([]string{
		"You are an AI assistant that helps format text appropriately for different contexts.",
		"Current app: " + target,
		"Context type: " + string(fc.Category),
		"Formality level: " + fc.Formality.String(),
		"",
		"When formatting text:",
		"1. Maintain the core message and meaning",
		"2. Adjust the tone and structure based on the context",
		"3. Keep the response concise but complete",
		"4. Do not add any explanations or additional notes",
		"5. Return only the formatted text",
		"6. Format specifically for the current app context",
	}, "\n")

	return Prompt{System: system, User: userPrompt(req)}
}

func userPrompt(req formatting.Request) string {
	fc := req.Context
	var lines []string
	switch fc.Category {
	case formatting.CategoryEmail:
		name := req.Names.For(fc.Formality)
		if name == "" {
			name = signaturePlaceholder
		}
		lines = []string{
			"Format this text as an email:",
			"- Add appropriate greeting",
			"- Fix any grammatical errors",
			"- Structure the message clearly",
			"- Add professional closing",
			"- End with signature: " + name,
			"- Use " + tone(fc.Formality) + " tone",
			"- Capitalize sentences",
			"- Return only the formatted email",
		}
	case formatting.CategoryMessage:
		lines = []string{
			"Format this text as a text message:",
			"- Keep it conversational and concise",
			"- Fix any typos but maintain casual style",
			"- Use appropriate emoji if it fits the context",
			"- Don't add a signature",
			"- Use natural messaging language",
			"- Return only the formatted message",
		}
	case formatting.CategoryChat:
		lines = []string{
			"Format this text as a team chat message:",
			"- Use chat-appropriate formatting and style",
			"- Include markdown when helpful",
			"- Use appropriate emoji sparingly",
			"- Keep it professional but friendly",
			"- Format code blocks if there's code",
			"- Return only the formatted chat message",
		}
	case formatting.CategoryTerminal:
		lines = []string{
			"Format this text as a terminal command:",
			"- Convert natural language into a valid shell command",
			"- Include appropriate flags and options",
			"- If comments are needed, prefix them with #COMMENT# (they will be filtered out)",
			"- Handle file paths and permissions appropriately",
			"- The first line MUST be the command only, with no prefixes or annotations",
			"- Do not include any explanatory text or markdown formatting",
		}
	default:
		lines = []string{
			"Format this text appropriately:",
			"- Fix any grammatical errors or typos",
			"- Use " + tone(fc.Formality) + " tone",
			"- Structure the content clearly",
			"- Return only the formatted text",
		}
	}

	return fmt.Sprintf("%s\n\nText: %s", strings.Join(lines, "\n"), req.Text)
}

func tone(f formatting.Formality) string {
	if f == formatting.Formal {
		return "formal"
	}
	return "casual"
}
