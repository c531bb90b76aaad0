// Package i18n holds the chat strings of the balance summary and the language matching around them.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Key identifies a translatable string.
type Key string

const (
	KeyBalance           Key = "balance"
	KeyCurrencyBreakdown Key = "currency_breakdown"
	KeyTransactions      Key = "transactions"
	KeyPositiveBalance   Key = "positive_balance"
	KeyNegativeBalance   Key = "negative_balance"
	KeyZeroBalance       Key = "zero_balance"
)

// Supported lists the languages with translations; the first entry is the fallback.
var Supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(Supported)

var translations = map[language.Tag]map[Key]string{
	language.English: {
		KeyBalance:           "Balance",
		KeyCurrencyBreakdown: "Currency Breakdown",
		KeyTransactions:      "transactions",
		KeyPositiveBalance:   "🎉 You have a positive balance!",
		KeyNegativeBalance:   "⚠️ You have a negative balance.",
		KeyZeroBalance:       "⚖️ Your balance is zero.",
	},
	language.Russian: {
		KeyBalance:           "Баланс",
		KeyCurrencyBreakdown: "Разбивка по валютам",
		KeyTransactions:      "транзакций",
		KeyPositiveBalance:   "🎉 У вас положительный баланс!",
		KeyNegativeBalance:   "⚠️ У вас отрицательный баланс.",
		KeyZeroBalance:       "⚖️ Ваш баланс равен нулю.",
	},
}

// Match resolves a user supplied language ("ru", "ru-RU", "en-GB,en;q=0.8", "") to a supported tag.
// Unknown or empty input selects English.
func Match(lang string) language.Tag {
	_, index := language.MatchStrings(matcher, lang)
	return Supported[index]
}

// Translator looks up strings and formats numbers for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// NewTranslator returns a translator for the best match of lang.
func NewTranslator(lang string) Translator {
	tag := Match(lang)
	return Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the resolved language.
func (t Translator) Tag() language.Tag {
	return t.tag
}

// T returns the translation of key, falling back to English and then to the key itself.
func (t Translator) T(key Key) string {
	if s, ok := translations[t.tag][key]; ok {
		return s
	}
	if s, ok := translations[language.English][key]; ok {
		return s
	}
	return string(key)
}

// Sprintf formats with locale-aware number rendering.
func (t Translator) Sprintf(format string, args ...any) string {
	return t.printer.Sprintf(format, args...)
}

// FormatFixed renders a plain decimal string such as "-1234567.50" with the locale's
// digit grouping and decimal separator. Digits are copied as given, never through a float.
func (t Translator) FormatFixed(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")

	group := separator(t.printer.Sprintf("%d", 1000), "1", "000")
	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString(separator(t.printer.Sprintf("%.1f", 1.5), "1", "5"))
		b.WriteString(frac)
	}
	return b.String()
}

// separator extracts what the printer put between head and tail.
func separator(rendered, head, tail string) string {
	return strings.TrimSuffix(strings.TrimPrefix(rendered, head), tail)
}
