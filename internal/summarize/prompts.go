package summarize

import (
	"bytes"
	"strings"
)

// Prompt construction for the verified summarization protocol. Drafts fed
// back into later prompts pass through EscapeBraces first; raw braces in
// model output would otherwise read as template placeholders downstream.

const summarySchema = `{
  "fileDescription": "one concise paragraph describing what the file does",
  "tag": "one of: ui | dataAccess | utility | feature",
  "elementsDetail": {"<element name>": "role of each exported element"},
  "algorithmicLogic": {"overview": "...", "steps": ["..."]},
  "businessLogic": {"overview": "...", "steps": ["..."]},
  "flowDescription": {"overview": "...", "steps": ["..."]}
}`

func systemInstruction() string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", "Summarize one source file from a codebase for an engineering knowledge base.")
	writeSection(&buf, "OUTPUT", "A single JSON object, no surrounding prose, matching:\n"+summarySchema)
	writeSection(&buf, "RULES", strings.Join([]string{
		"- tag must be exactly one of ui, dataAccess, utility, feature.",
		"- Omit algorithmicLogic, businessLogic or flowDescription when the file has none.",
		"- Describe behavior, not syntax. Never restate the code line by line.",
	}, "\n"))
	return buf.String()
}

func filePrompt(path, content, dependencies string) string {
	var buf bytes.Buffer
	writeSection(&buf, "FILE", path)
	if dependencies != "" {
		writeSection(&buf, "DEPENDENCIES", dependencies)
	}
	writeSection(&buf, "CONTENT", EscapeBraces(content))
	return buf.String()
}

func questionPrompt(draft string) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", "Probe a summary draft for gaps and unsupported claims.")
	writeSection(&buf, "DRAFT", EscapeBraces(draft))
	writeSection(&buf, "OUTPUT", "A numbered list of short, specific questions the draft leaves unanswered. Questions only.")
	return buf.String()
}

func answerPrompt(questions, path, content string) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", "Answer the questions below strictly from the file content. Say \"not determinable from the file\" where the content does not answer a question.")
	writeSection(&buf, "QUESTIONS", questions)
	writeSection(&buf, "FILE", path)
	writeSection(&buf, "CONTENT", EscapeBraces(content))
	return buf.String()
}

func densifyInstruction(questions, answers string) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", "Rewrite your previous summary to be denser and more complete, folding in the verified answers below. Keep the same JSON schema.")
	writeSection(&buf, "QUESTIONS", questions)
	writeSection(&buf, "VERIFIED_ANSWERS", answers)
	writeSection(&buf, "OUTPUT", "The improved summary as a single JSON object, no surrounding prose.")
	return buf.String()
}

func repairPrompt(raw string) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", "Reformat the text below into a single valid JSON object matching the schema. Preserve the content; fix only the structure.")
	writeSection(&buf, "SCHEMA", summarySchema)
	writeSection(&buf, "TEXT", EscapeBraces(raw))
	return buf.String()
}

func writeSection(buf *bytes.Buffer, name, body string) {
	if body == "" {
		return
	}
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("[" + name + "]\n")
	buf.WriteString(body)
	buf.WriteString("\n")
}

// EscapeBraces doubles curly braces so embedded source or drafts survive
// template rendering unchanged.
func EscapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
