package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bingo-backend/config"

	"github.com/rs/zerolog"
)

var languageNames = map[string]string{
	"en": "English",
	"am": "አማርኛ",
}

// TranslationService serves localized UI text. Dictionaries load once at
// startup; lookups use dot-notation keys with an English fallback chain.
type TranslationService struct {
	translations map[string]map[string]any
	supported    []string
	defaultLang  string
	log          zerolog.Logger
}

// NewTranslationService loads translation dictionaries from cfg.Dir.
// A missing or malformed file logs a warning and yields an empty dictionary
// for that language rather than failing startup.
func NewTranslationService(cfg config.TranslationsConfig, log zerolog.Logger) *TranslationService {
	s := &TranslationService{
		translations: make(map[string]map[string]any),
		supported:    []string{"en", "am"},
		defaultLang:  cfg.DefaultLanguage,
		log:          log,
	}
	if s.defaultLang == "" {
		s.defaultLang = "en"
	}

	for _, lang := range s.supported {
		path := filepath.Join(cfg.Dir, lang+".json")
		dict, err := loadDictionary(path)
		if err != nil {
			log.Warn().Err(err).Str("language", lang).Str("path", path).Msg("translation file not loaded")
			dict = map[string]any{}
		}
		s.translations[lang] = dict
	}
	return s
}

func loadDictionary(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translation file: %w", err)
	}
	var dict map[string]any
	if err := json.Unmarshal(raw, &dict); err != nil {
		return nil, fmt.Errorf("parse translation file: %w", err)
	}
	return dict, nil
}

// SupportedLanguages returns the supported language codes.
func (s *TranslationService) SupportedLanguages() []string {
	return s.supported
}

// IsSupported reports whether lang has a loaded dictionary.
func (s *TranslationService) IsSupported(lang string) bool {
	_, ok := s.translations[lang]
	return ok
}

// LanguageNames maps supported codes to display names.
func (s *TranslationService) LanguageNames() map[string]string {
	names := make(map[string]string, len(s.supported))
	for _, lang := range s.supported {
		names[lang] = languageNames[lang]
	}
	return names
}

// DefaultLanguage returns the fallback language code.
func (s *TranslationService) DefaultLanguage() string {
	return s.defaultLang
}

// Dictionary returns the full dictionary for a supported language.
func (s *TranslationService) Dictionary(lang string) (map[string]any, bool) {
	dict, ok := s.translations[lang]
	return dict, ok
}

// Text resolves a dot-notation key in the requested language, falling back
// to English, then to the key itself. Placeholders of the form {name} are
// substituted from params.
func (s *TranslationService) Text(key, lang string, params map[string]string) string {
	if !s.IsSupported(lang) {
		lang = "en"
	}

	text, ok := lookup(s.translations[lang], key)
	if !ok && lang != "en" {
		text, ok = lookup(s.translations["en"], key)
	}
	if !ok {
		return key
	}

	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}

// Content returns a typed subset of a language's dictionary for UI rendering.
// Unsupported languages silently fall back to English; contentType "all" or
// unknown returns the whole dictionary. The effective language is returned
// alongside the content.
func (s *TranslationService) Content(lang, contentType string) (map[string]any, string) {
	if !s.IsSupported(lang) {
		lang = "en"
	}
	dict := s.translations[lang]

	switch contentType {
	case "navigation", "game", "wallet", "auth":
		if section, ok := dict[contentType].(map[string]any); ok {
			return section, lang
		}
		return map[string]any{}, lang
	default:
		return dict, lang
	}
}

// lookup walks a nested dictionary along a dot-separated key path.
func lookup(dict map[string]any, key string) (string, bool) {
	parts := strings.Split(key, ".")
	var current any = dict
	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = node[part]
		if !ok {
			return "", false
		}
	}
	text, ok := current.(string)
	return text, ok
}
