package widget

import (
	"image"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"mobileinput/internal/config"
	"mobileinput/internal/protocol"
)

// Bounds converts a fractional rect into pixels of size. Each edge is
// truncated toward zero, never rounded.
func Bounds(r protocol.Rect, size image.Point) image.Rectangle {
	w, h := float64(size.X), float64(size.Y)
	x := float64(r.X) * w
	y := float64(r.Y) * h
	return image.Rectangle{
		Min: image.Point{X: int(x), Y: int(y)},
		Max: image.Point{X: int(x + float64(r.Width)*w), Y: int(y + float64(r.Height)*h)},
	}
}

// LimitText applies the character limit to text. It reports whether the text
// had to change. Limits count runes.
func LimitText(text string, limit int, mode string) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	n := utf8.RuneCountInString(text)
	if n < limit+1 {
		return text, false
	}
	keep := n - 1
	if mode == config.LimitClamp {
		keep = limit
	}
	runes := []rune(text)
	return string(runes[:keep]), true
}

// CanonicalLanguage normalizes a BCP 47 code, for example "EN-us" to "en-US".
// Codes that do not parse are returned unchanged.
func CanonicalLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}

// defaultLanguage reports whether code asks for the system keyboard
// language.
func defaultLanguage(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || strings.EqualFold(code, "default")
}

func appendLocale(locales []string, tag string) []string {
	for _, l := range locales {
		if l == tag {
			return locales
		}
	}
	return append(append([]string(nil), locales...), tag)
}
