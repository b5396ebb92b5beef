package i18n

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/text/language"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Selector is the persisted language choice. The value is stored as a plain
// string under the "language" key.
type Selector struct {
	kv       kvstore.Store
	catalog  *Catalog
	fallback string
	codes    []string
	matcher  language.Matcher

	mu      sync.RWMutex
	current string
}

// NewSelector creates a selector over the catalog's languages. fallbackLang is
// used before anything is persisted and for keys missing in the current language.
func NewSelector(kv kvstore.Store, c *Catalog, fallbackLang string) (*Selector, error) {
	if !containsString(c.Languages(), fallbackLang) {
		return nil, fmt.Errorf("%w: default %q", ErrUnsupportedLanguage, fallbackLang)
	}

	// The fallback goes first so it wins when nothing matches.
	codes := []string{fallbackLang}
	for _, code := range c.Languages() {
		if code != fallbackLang {
			codes = append(codes, code)
		}
	}
	tags := make([]language.Tag, len(codes))
	for i, code := range codes {
		tags[i] = c.tags[code]
	}

	return &Selector{
		kv:       kv,
		catalog:  c,
		fallback: fallbackLang,
		codes:    codes,
		matcher:  language.NewMatcher(tags),
		current:  fallbackLang,
	}, nil
}

// Restore loads the persisted language. Unknown stored values are ignored.
func (s *Selector) Restore() error {
	raw, ok, err := s.kv.Get(entities.StorageKeyLanguage)
	if err != nil {
		return fmt.Errorf("failed to load language: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok || raw == "" {
		s.current = s.fallback
		return nil
	}
	code, err := s.match(raw)
	if err != nil {
		log.Printf("Locale: ignoring stored language %q: %v", raw, err)
		s.current = s.fallback
		return nil
	}
	s.current = code
	return nil
}

// Language returns the current language code.
func (s *Selector) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Supported returns the selectable language codes, fallback first.
func (s *Selector) Supported() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// SetLanguage selects the supported language closest to code (en-GB picks en)
// and persists it. Returns the selected code.
func (s *Selector) SetLanguage(code string) (string, error) {
	matched, err := s.match(code)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(entities.StorageKeyLanguage, matched); err != nil {
		return "", fmt.Errorf("failed to save language: %w", err)
	}
	s.current = matched
	return matched, nil
}

// Translate formats key in the current language, then in the fallback
// language. Keys missing from both are returned as is.
func (s *Selector) Translate(key string, args ...any) string {
	lang := s.Language()
	if msg, ok := s.catalog.Sprintf(lang, key, args...); ok {
		return msg
	}
	if msg, ok := s.catalog.Sprintf(s.fallback, key, args...); ok {
		return msg
	}
	return key
}

func (s *Selector) match(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	_, idx, confidence := s.matcher.Match(tag)
	if confidence == language.No {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return s.codes[idx], nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
