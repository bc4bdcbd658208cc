package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize parses code and returns its canonical ISO 639-1 base form
// ("EN" → "en", "pt-BR" → "pt").
func Normalize(code string) (string, error) {
	tag, err := parse(code)
	if err != nil {
		return "", err
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// DisplayName returns the English display name for code ("kk" → "Kazakh"),
// or the empty string when the code cannot be parsed.
func DisplayName(code string) string {
	tag, err := parse(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}

func parse(code string) (xlanguage.Tag, error) {
	cleaned := strings.TrimSpace(code)
	if cleaned == "" {
		return xlanguage.Tag{}, fmt.Errorf("empty language code")
	}
	tag, err := xlanguage.Parse(cleaned)
	if err != nil {
		return xlanguage.Tag{}, fmt.Errorf("parse language code %q: %w", cleaned, err)
	}
	return tag, nil
}
