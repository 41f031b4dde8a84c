package summarize

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind discriminates the supported input sources.
type Kind string

const (
	KindText     Kind = "text"
	KindDocument Kind = "document"
	KindYouTube  Kind = "youtube"
)

// Input is one summarization request body. For KindYouTube, Content is the
// video URL; otherwise it is the raw text to summarize.
type Input struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

const promptPreamble = "Summarize the following content as concise markdown with headings and bullet points. Respond with the summary only."

// buildPrompt validates the input and renders the completion prompt.
func buildPrompt(input Input, maxBytes int64) (string, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return "", ErrEmptyInput
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", ErrInputTooLarge
	}

	switch input.Kind {
	case KindText:
		return fmt.Sprintf("%s\n\nText:\n%s", promptPreamble, content), nil
	case KindDocument:
		title := strings.TrimSpace(input.Title)
		if title == "" {
			title = "untitled document"
		}
		return fmt.Sprintf("%s\n\nDocument %q:\n%s", promptPreamble, title, content), nil
	case KindYouTube:
		if !isYouTubeLink(content) {
			return "", ErrInvalidYouTubeLink
		}
		return fmt.Sprintf("%s\n\nVideo transcript source: %s", promptPreamble, content), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, input.Kind)
	}
}

func isYouTubeLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		return u.Path == "/watch" && u.Query().Get("v") != ""
	case "youtu.be":
		return len(strings.Trim(u.Path, "/")) > 0
	default:
		return false
	}
}
