package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"signalmail/pkg/news"
)

const welcomeSystemPrompt = "You are a concise financial product copywriter. Keep it warm, on-brand, and under 120 words."

const welcomePromptTemplate = `Write a short personalized welcome paragraph for a new Signalmail user.

Signalmail sends market alerts and a daily news digest. Speak directly to the
user, reference their profile where it is natural, and end with one sentence
about what they can expect from their daily digest.

User profile:
{{userProfile}}

Output plain text only, no greeting line and no signature.`

const digestSystemPrompt = "You summarize financial news succinctly for a daily email. Keep it scannable with short bullets and one actionable insight."

const digestPromptTemplate = `Summarize the following market news for today's digest email.

Rules:
- Open with one sentence on the overall market mood
- Then 3 to 5 short bullets, one distinct story each
- Keep company names, numbers, and percentages
- Close with one actionable insight

News data:
{{newsData}}

Output plain text only.`

func buildWelcomePrompt(profile string) string {
	return strings.ReplaceAll(welcomePromptTemplate, "{{userProfile}}", profile)
}

func buildDigestPrompt(articles []news.Article) (string, error) {
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize news data: %w", err)
	}
	return strings.ReplaceAll(digestPromptTemplate, "{{newsData}}", string(data)), nil
}
