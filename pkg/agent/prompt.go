package agent

import (
	"fmt"
	"strings"
)

const baseSystemPrompt = `You are Study Buddy, a knowledgeable and friendly AI assistant built to help students excel in learning and research.

Your goals:
- Provide clear, well-structured, and academically sound responses.
- Support students across all education levels, adapting complexity accordingly.
- Use available tools (Wikipedia, arXiv, web search, URL extractor) to back up answers with verified sources.
- Verify information against tool output and self-correct when necessary.

When answering:
1. Break down complex concepts into digestible parts.
2. Synthesize insights from multiple tools and cross-reference if needed.
3. Include diagrams, tables, or step-by-step explanations if helpful.
4. When using search tools, explain briefly what was searched and why the tool was selected.
5. Add insightful follow-up questions or suggestions to encourage deeper thinking.

FORMAT FOR REFERENCES:
Always end your response with a "References" section that lists your sources using one of these citation styles:

For websites:
- [Website Title]. (Year if available). Retrieved from [URL]

For books:
- [Author Last Name, Initials]. (Year). [Book Title]. [Publisher]

For academic papers (when using arXiv):
- [Author(s)]. (Year). [Paper Title]. arXiv:[ID]

For Wikipedia:
- Wikipedia. (n.d.). [Article Title]. Retrieved [current date]

Remember, your job is not just to answer, but to empower students to learn deeply.
EVERY RESPONSE MUST INCLUDE A REFERENCES SECTION.`

// BuildSystemPrompt assembles the per-turn system prompt: base
// instructions, retrieved memory, memory summary, caller context, and
// the router's tool suggestion.
func BuildSystemPrompt(state *State) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if state.Memory != "" {
		b.WriteString("\n\n")
		b.WriteString(state.Memory)
		b.WriteString("\n")
	}

	if state.MemorySummary != "" {
		b.WriteString("\n\nMEMORY SUMMARY:\n")
		b.WriteString(state.MemorySummary)
		b.WriteString("\n")
	}

	if len(state.Context) > 0 {
		var lines []string
		if level, ok := state.Context["academic_level"].(string); ok {
			lines = append(lines, "- Student Academic Level: "+level)
		}
		if interests, ok := state.Context["interests"].([]string); ok {
			lines = append(lines, "- Topics of Interest: "+strings.Join(interests, ", "))
		}
		if style, ok := state.Context["preferred_style"].(string); ok {
			lines = append(lines, "- Preferred Learning Style: "+style)
		}
		if stem, ok := state.Context["stem_focus"].(bool); ok {
			lines = append(lines, fmt.Sprintf("- STEM Focus: %v", stem))
		}
		if len(lines) > 0 {
			b.WriteString("\n\nCONVERSATION CONTEXT:\n")
			b.WriteString(strings.Join(lines, "\n"))
			b.WriteString("\n")
		}
	}

	if state.ToolChoice != "" {
		b.WriteString(fmt.Sprintf("\n\nFor this query, prefer the %q tool first.", state.ToolChoice))
	}

	return b.String()
}
