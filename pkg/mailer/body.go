package mailer

import (
	"fmt"
	"html"
	"strings"
)

func welcomeHTML(name, intro string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
<h2>Welcome, %s</h2>
<p>%s</p>
<p>— The Signalmail team</p>
</div>`, html.EscapeString(name), toParagraphs(intro))
}

func digestHTML(date, digest string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
<h2>Market digest</h2>
<p style="color:#666">%s</p>
%s
<p style="color:#999;font-size:12px">You receive this because you opted into the Signalmail daily digest.</p>
</div>`, html.EscapeString(date), toParagraphs(digest))
}

// toParagraphs escapes plain model output and keeps its line structure.
func toParagraphs(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}
