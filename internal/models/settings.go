package models

import "fmt"

// Language is a supported UI and AI response language
type Language string

const (
	LanguagePortuguese Language = "pt"
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
)

// ParseLanguage maps unsupported tags to English
func ParseLanguage(s string) Language {
	switch l := Language(s); l {
	case LanguagePortuguese, LanguageEnglish, LanguageSpanish, LanguageFrench:
		return l
	default:
		return LanguageEnglish
	}
}

// Settings are a profile's accessibility preferences
type Settings struct {
	Language      Language `json:"language"`
	SpeechRate    float64  `json:"speechRate"`
	HighContrast  bool     `json:"highContrast"`
	ReducedMotion bool     `json:"reducedMotion"`
}

func DefaultSettings() Settings {
	return Settings{
		Language:   LanguagePortuguese,
		SpeechRate: 1.0,
	}
}

func (s Settings) Validate() error {
	if ParseLanguage(string(s.Language)) != s.Language {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	if s.SpeechRate < 0.1 || s.SpeechRate > 10 {
		return fmt.Errorf("speech rate %v out of range", s.SpeechRate)
	}
	return nil
}
