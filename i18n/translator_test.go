package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/valtree/i18n"
)

func TestEnglish_IsIdentity(t *testing.T) {
	assert.Equal(t, "cannot be blank", i18n.English.Gettext("cannot be blank"))
	assert.Equal(t, "anything at all", i18n.English.Gettext("anything at all"))
}

func TestJapanese_TranslatesKnownTemplates(t *testing.T) {
	assert.Equal(t, "空にできません", i18n.Japanese.Gettext("cannot be blank"))
	// Unknown templates pass through untouched.
	assert.Equal(t, "anything at all", i18n.Japanese.Gettext("anything at all"))
}

func TestMatch(t *testing.T) {
	assert.Equal(t, i18n.Japanese, i18n.Match("ja-JP"))
	assert.Equal(t, i18n.Japanese, i18n.Match("ja"))
	assert.Equal(t, i18n.English, i18n.Match("en-US"))
	assert.Equal(t, i18n.English, i18n.Match("fr-FR"))
	assert.Equal(t, i18n.English, i18n.Match())
}

func TestSetDefault(t *testing.T) {
	defer i18n.SetDefault(nil)

	i18n.SetDefault(i18n.Japanese)
	assert.Equal(t, i18n.Japanese, i18n.Default())

	i18n.SetDefault(nil)
	assert.Equal(t, i18n.English, i18n.Default())

	i18n.SetDefaultLocale("ja")
	assert.Equal(t, i18n.Japanese, i18n.Default())
}
