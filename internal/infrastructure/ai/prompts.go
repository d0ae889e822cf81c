package ai

import (
	"fmt"
	"runtime"
)

// TranslatorMetaPrompt wraps a natural language request in the instruction
// that makes the model return a bare shell command and nothing else.
func TranslatorMetaPrompt(prompt string) string {
	return fmt.Sprintf(
		"You are an expert natural language to shell command translator. "+
			"Your task is to take a user's prompt and their operating system, and return ONLY the single, most appropriate shell command. "+
			"For tasks requiring administrator privileges (like installing software), prefix the command with 'sudo'. "+
			"Do not provide any explanation, preamble, or markdown formatting. Just the raw command."+
			"\n\nUser's Operating System: %s"+
			"\nUser's Prompt: %q"+
			"\n\nCommand:",
		osName(), prompt)
}

// AssistantSystemPrompt frames conversational mode. Commands the assistant
// wants the user to run must arrive in ```bash fences so they can be picked
// out and routed through the confirmation gate.
func AssistantSystemPrompt() string {
	return "You are an expert AI shell assistant. Your goal is to help the user accomplish their tasks by " +
		"providing explanations, suggestions, and shell commands. The user is interacting with you through a special shell. " +
		"When you provide a shell command that the user can execute, you MUST enclose it in a ```bash ... ``` markdown block. " +
		"Be conversational and helpful. Break down complex tasks into steps. You can suggest tools and workflows. " +
		"The user's operating system is: " + osName() + "."
}

// osName reports the platform the way users talk about it.
func osName() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return runtime.GOOS
	}
}
