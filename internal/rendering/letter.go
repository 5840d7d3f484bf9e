package rendering

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/cover-letter/internal/types"
)

// Letter context keys.
const (
	KeyTodayDate         = "today_date"
	KeyPositionName      = "position_name"
	KeyCompanyName       = "company_name"
	KeyCompanyPossessive = "company_name_plural"
	KeyArticle           = "a"
	KeyClosingSentence   = "generate"
	KeyValuesParagraph   = "glazing"
	KeyShortForm         = "short_form"
)

const (
	letterDateLayout = "January 02, 2006"
	fileDateLayout   = "2006-01-02"
)

var shortFormSkipWords = map[string]bool{
	"intern":     true,
	"internship": true,
	"co-op":      true,
	"coop":       true,
	"student":    true,
}

// BuildContext assembles the template context for a letter dated now.
func BuildContext(details types.ExtractionResult, bundle types.NarrativeBundle, now time.Time) types.LetterContext {
	return types.LetterContext{
		KeyTodayDate:         now.Format(letterDateLayout),
		KeyPositionName:      details.PositionName,
		KeyCompanyName:       details.CompanyName,
		KeyCompanyPossessive: details.CompanyPossessive(),
		KeyArticle:           Article(details.PositionName),
		KeyClosingSentence:   bundle.ClosingSentence,
		KeyValuesParagraph:   bundle.ValuesParagraph,
		KeyShortForm:         ShortFormPosition(details.PositionName),
	}
}

// Article returns "an" when position starts with a vowel and "a" otherwise.
func Article(position string) string {
	first, _ := utf8.DecodeRuneInString(position)
	if strings.ContainsRune("AEIOU", unicode.ToUpper(first)) {
		return "an"
	}
	return "a"
}

// ShortFormPosition abbreviates a position title to initials. Words containing
// non-letters and intern/co-op/student words are skipped; "Software" becomes "SW".
func ShortFormPosition(position string) string {
	var sb strings.Builder
	for _, word := range strings.Fields(position) {
		if !isAlpha(word) {
			continue
		}
		lower := strings.ToLower(word)
		switch {
		case lower == "software":
			sb.WriteString("SW")
		case shortFormSkipWords[lower]:
		default:
			first, _ := utf8.DecodeRuneInString(word)
			sb.WriteRune(unicode.ToUpper(first))
		}
	}
	return sb.String()
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// OutputFileName returns "<company> <position> <YYYY-MM-DD>.<ext>" with path
// separators removed from the names.
func OutputFileName(details types.ExtractionResult, now time.Time, ext string) string {
	name := fmt.Sprintf("%s %s %s", details.CompanyName, details.PositionName, now.Format(fileDateLayout))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	return name + "." + strings.TrimPrefix(ext, ".")
}
