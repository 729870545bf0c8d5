package domain

import "strings"

// Locale identifies one of the two display languages of the site.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleAR Locale = "ar"
)

// ParseLocale falls back to English for anything it does not recognize.
func ParseLocale(s string) Locale {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ar":
		return LocaleAR
	default:
		return LocaleEN
	}
}

// LocalizedText is a bilingual text pair as authored in the CMS.
type LocalizedText struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// Resolve returns the text for the requested locale, falling back to the
// other language when the requested one is blank.
func (t LocalizedText) Resolve(loc Locale) string {
	primary, secondary := t.EN, t.AR
	if loc == LocaleAR {
		primary, secondary = t.AR, t.EN
	}
	if s := strings.TrimSpace(primary); s != "" {
		return s
	}
	return strings.TrimSpace(secondary)
}

func (t LocalizedText) Empty() bool {
	return strings.TrimSpace(t.EN) == "" && strings.TrimSpace(t.AR) == ""
}
