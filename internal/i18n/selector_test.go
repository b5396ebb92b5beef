package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

func newTestSelector(t *testing.T) (*Selector, *kvstore.MemoryStore) {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	kv := kvstore.NewMemoryStore()
	s, err := NewSelector(kv, c, "tr")
	require.NoError(t, err)
	return s, kv
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "tr"}, c.Languages())
	for _, key := range []string{MsgCartAdded, MsgCartRemoved, MsgFavoritesLoginRequired, MsgCurrencyUnavailable} {
		assert.True(t, c.Has("tr", key), key)
		assert.True(t, c.Has("en", key), key)
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte("tr: [not, a, map]"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(""))
	assert.Error(t, err)
}

func TestSelector_DefaultsToFallback(t *testing.T) {
	s, _ := newTestSelector(t)
	require.NoError(t, s.Restore())

	assert.Equal(t, "tr", s.Language())
	assert.Equal(t, "Başarıyla Sepete Eklendi", s.Translate(MsgCartAdded))
	assert.Equal(t, []string{"tr", "en"}, s.Supported())
}

func TestSelector_SetLanguage(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    string
		wantErr bool
	}{
		{name: "exact", code: "en", want: "en"},
		{name: "regional variant", code: "en-GB", want: "en"},
		{name: "turkish", code: "tr-TR", want: "tr"},
		{name: "unsupported", code: "de", wantErr: true},
		{name: "garbage", code: "not a language", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := newTestSelector(t)

			got, err := s.SetLanguage(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedLanguage)
				assert.Equal(t, "tr", s.Language())
				_, found, _ := kv.Get(entities.StorageKeyLanguage)
				assert.False(t, found)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, s.Language())
			stored, _, _ := kv.Get(entities.StorageKeyLanguage)
			assert.Equal(t, tt.want, stored)
		})
	}
}

func TestSelector_RestoreFromStore(t *testing.T) {
	s, kv := newTestSelector(t)
	require.NoError(t, kv.Set(entities.StorageKeyLanguage, "en"))

	require.NoError(t, s.Restore())
	assert.Equal(t, "en", s.Language())

	require.NoError(t, kv.Set(entities.StorageKeyLanguage, "xx-unknown"))
	require.NoError(t, s.Restore())
	assert.Equal(t, "tr", s.Language())
}

func TestSelector_Translate(t *testing.T) {
	c, err := ParseCatalog([]byte(`
tr:
  greeting: "Merhaba %s"
  only.tr: "Yalnızca Türkçe"
en:
  greeting: "Hello %s"
`))
	require.NoError(t, err)
	s, err := NewSelector(kvstore.NewMemoryStore(), c, "tr")
	require.NoError(t, err)
	_, err = s.SetLanguage("en")
	require.NoError(t, err)

	assert.Equal(t, "Hello Ada", s.Translate("greeting", "Ada"))
	assert.Equal(t, "Yalnızca Türkçe", s.Translate("only.tr"))
	assert.Equal(t, "missing.key", s.Translate("missing.key"))
}

func TestNewSelector_UnknownFallback(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	_, err = NewSelector(kvstore.NewMemoryStore(), c, "de")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}
