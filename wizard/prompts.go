package wizard

import "fmt"

// systemPrompt sets the assistant persona for every session.
const systemPrompt = "You are Code Wizard, an expert programming assistant. " +
	"You analyze code, explain concepts, and answer follow-up questions. " +
	"Be precise, cite the relevant lines when discussing submitted code, and " +
	"format code in Markdown fenced blocks."

// analysisPrompt asks for the full first-pass review of a code submission.
func analysisPrompt(code string) string {
	return fmt.Sprintf("Analyze this code:\n```\n%s\n```\n"+
		"Provide a detailed analysis including:\n"+
		"1. Overview\n"+
		"2. Key components\n"+
		"3. Concepts used\n"+
		"4. Performance notes\n"+
		"5. Potential improvements\n", code)
}

// followUpPrompt pins the submitted code next to a focused question about it.
func followUpPrompt(code, question string) string {
	return fmt.Sprintf("Code:\n```\n%s\n```\n"+
		"Question: %s\n"+
		"Provide a focused answer with relevant examples.\n", code, question)
}
