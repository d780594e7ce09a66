package llm

import "context"

// Instruction is the fixed request sent to the generator for each day's prompt.
const Instruction = `You are an empathetic agent, designed to ask thought-provoking questions.
Generate one question and avoid cliches. Always generate a different prompt to the user.
You want to give an open ended question and be nice.`

// PromptGenerator produces one reflective question from a natural-language
// instruction. Implementations return trimmed, non-empty text or an error;
// callers never receive an empty prompt.
type PromptGenerator interface {
	GeneratePrompt(ctx context.Context, instruction string) (string, error)
}
