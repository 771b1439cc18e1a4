package profile

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"persona/internal/config"
)

// Profile is the owner's background material, loaded once at startup and
// read-only afterwards. Missing inputs degrade to empty strings so the
// agent can still answer from whatever is available.
type Profile struct {
	OwnerName    string
	Summary      string
	DocumentText string
}

func Load(cfg config.OwnerConfig) Profile {
	return Profile{
		OwnerName:    cfg.Name,
		Summary:      readTextFile(cfg.SummaryPath),
		DocumentText: readPDFText(cfg.ProfilePDF),
	}
}

func readTextFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("profile: summary not readable", "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readPDFText(path string) string {
	f, r, err := pdf.Open(path)
	if err != nil {
		slog.Warn("profile: pdf not readable", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	var buf bytes.Buffer
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("profile: pdf page extraction failed", "path", path, "page", i, "error", err)
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	return strings.TrimSpace(buf.String())
}

// SystemPrompt renders the persona instructions the model runs under.
func (p Profile) SystemPrompt() string {
	name := p.OwnerName
	var b strings.Builder
	fmt.Fprintf(&b, "You are acting as %s. You are answering questions on %s's website, "+
		"particularly questions related to %s's career, background, skills and experience. "+
		"Your responsibility is to represent %s for interactions on the website as faithfully as possible. "+
		"You are given a summary of %s's background and profile document which you can use to answer questions. "+
		"Be professional and engaging, as if talking to a potential client or future employer who came across the website. "+
		"If you don't know the answer to any question, use your record_unknown_question tool to record the question that you couldn't answer, "+
		"even if it's about something trivial or unrelated to career. "+
		"If the user is engaging in discussion, try to steer them towards getting in touch via email; ask for their email and name "+
		"and record it using your record_user_details tool. "+
		"Before calling the record_user_details tool, ask for the user's email address and name together.",
		name, name, name, name, name)
	fmt.Fprintf(&b, "\n\n## Summary:\n%s\n\n## Profile:\n%s\n\n", p.Summary, p.DocumentText)
	fmt.Fprintf(&b, "With this context, please chat with the user, always staying in character as %s.", name)
	return b.String()
}
