// Package i18n provides message-template translation for valtree error
// rendering. The engine only needs the Translations capability; catalogs for
// English (identity) and Japanese are built in, and callers may install
// their own.
package i18n

import "golang.org/x/text/language"

// Translations retrieves the localized form of a message template. Templates
// keep their {placeholder} markers; substitution happens after translation.
type Translations interface {
	Gettext(template string) string
}

type catalog struct {
	entries map[string]string
}

func (c catalog) Gettext(template string) string {
	if t, ok := c.entries[template]; ok {
		return t
	}
	return template
}

// English is the identity catalog (templates are authored in English).
var English Translations = catalog{}

// Japanese translates the built-in default message templates.
var Japanese Translations = catalog{entries: map[string]string{
	"cannot be nil":                          "nil は許可されていません",
	"cannot be null":                         "null は許可されていません",
	"must be nil":                            "nil である必要があります",
	"must be null":                           "null である必要があります",
	"cannot be blank":                        "空にできません",
	`expected type is "{expected_type}"`:     "期待される型は \"{expected_type}\" です",
	"value is not allowed":                   "許可されていない値です",
	"must be later than {value}":             "{value} より後である必要があります",
	"must be later or equal to {value}":      "{value} 以降である必要があります",
	"must be earlier than {value}":           "{value} より前である必要があります",
	"must be earlier or equal to {value}":    "{value} 以前である必要があります",
	"invalid date format":                    "日付の形式が不正です",
	"invalid date and time format":           "日時の形式が不正です",
	"must be less than {value}":              "{value} 未満である必要があります",
	"must be less or equal to {value}":       "{value} 以下である必要があります",
	"must be greater than {value}":           "{value} より大きい必要があります",
	"must be greater or equal to {value}":    "{value} 以上である必要があります",
	"invalid integer format":                 "整数の形式が不正です",
	"invalid numeric format":                 "数値の形式が不正です",
	"invalid string format":                  "文字列の形式が不正です",
	"must be {value} characters long":        "{value} 文字である必要があります",
	"must be shorter than {value} characters": "{value} 文字より短い必要があります",
	"must be longer than {value} characters":  "{value} 文字より長い必要があります",
	"must be valid regex":                    "有効な正規表現である必要があります",
	"key errors":                             "キーエラー",
	"value errors":                           "値エラー",
	"key is required":                        "キーは必須です",
	"unknown key":                            "未知のキーです",
	"must be {value} items long":             "{value} 要素である必要があります",
	"must be shorter than {value} items":     "{value} 要素より少ない必要があります",
	"must be longer than {value} items":      "{value} 要素より多い必要があります",
	"does not match any of the variants":     "どのバリアントにも一致しません",
	"value is not callable":                  "呼び出し可能な値ではありません",
}}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Japanese,
})

// Match picks the best built-in catalog for a locale priority list
// ("ja-JP", "en-US", ...). Unrecognized locales fall back to English.
func Match(locales ...string) Translations {
	if len(locales) == 0 {
		return English
	}
	_, index := language.MatchStrings(matcher, locales...)
	if index == 1 {
		return Japanese
	}
	return English
}

var current Translations = English

// SetDefault replaces the process-wide default Translations (nil restores
// English).
func SetDefault(tr Translations) {
	if tr == nil {
		current = English
		return
	}
	current = tr
}

// SetDefaultLocale is a convenience over SetDefault(Match(locales...)).
func SetDefaultLocale(locales ...string) {
	current = Match(locales...)
}

// Default returns the process-wide default Translations.
func Default() Translations { return current }
