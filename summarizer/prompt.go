package summarizer

import (
	"fmt"
	"strings"
)

const promptTemplate = `Task: Summarize this news in casual "Hinglish" (Hindi written in English script).

Strict Rules:
1. Script: Use ONLY the English alphabet. NO Devanagari script.
2. Tone: Casual, layman, conversational (like talking to a friend).
3. Style: Use simple English for technical terms, but Hindi grammar/fillers.
   - Bad: "Vartamaan mein sthiti gambhir hai." (Too formal)
   - Good: "Abhi situation thodi serious hai boss." (Perfect layman style)
4. Length: Keep it under 60 words.
5. Output only the summary text, without quotes or markdown.

News to summarize: "%s"`

// BuildPrompt renders the single prompt used for every Hinglish conversion.
func BuildPrompt(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	text := title
	if body != "" {
		if text != "" {
			text += ". "
		}
		text += body
	}
	return fmt.Sprintf(promptTemplate, text)
}
