package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

const fence = "```"

// ExtractText pulls plain text out of either response shape. It never fails;
// an unusable response yields "".
func ExtractText(resp *ModelResponse) string {
	if resp == nil {
		return ""
	}

	if sdk := resp.SDK; sdk != nil {
		if text := sdk.Text(); text != "" {
			return text
		}
		if len(sdk.Candidates) == 0 || sdk.Candidates[0] == nil || sdk.Candidates[0].Content == nil {
			return ""
		}
		var texts []string
		for _, part := range sdk.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
		return strings.Join(texts, "\n")
	}

	if !resp.Raw.Exists() {
		return ""
	}
	if text := resp.Raw.Get("text").String(); text != "" {
		return text
	}
	var texts []string
	for _, part := range resp.Raw.Get("candidates.0.content.parts").Array() {
		if text := part.Get("text").String(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}

// StripCodeFence removes a surrounding Markdown code fence, touching only
// markers that are actually present.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, fence) {
		return text
	}

	text = dropFenceTag(strings.TrimPrefix(text, fence))
	// A single-line fence has no line break after its tag.
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), fence)

	return strings.TrimSpace(text)
}

// dropFenceTag removes a language tag such as "JSON" or "javascript" that
// sits on the opening fence line.
func dropFenceTag(text string) string {
	line, rest, found := strings.Cut(text, "\n")
	if !found {
		return text
	}
	tag := strings.TrimSpace(line)
	if tag == "" {
		return rest
	}
	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+-_.#", r) {
			return text
		}
	}
	return rest
}

// DecodeContract decodes the model text into target after stripping fences.
func DecodeContract(text string, target interface{}) error {
	payload := StripCodeFence(text)
	if payload == "" || payload == "null" {
		return fmt.Errorf("%w: empty response", ErrDecode)
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}
