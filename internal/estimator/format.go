package estimator

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	groupingPrinter = message.NewPrinter(language.AmericanEnglish)

	persianDigits = strings.NewReplacer(
		"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
		"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
	)

	latinDigits = strings.NewReplacer(
		"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
		"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
		// Arabic-Indic digits are common on Persian keyboards too.
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
		"٫", ".", "٬", ",",
	)
)

// ToPersianDigits replaces ASCII digits with Persian numerals, leaving
// every other rune untouched.
func ToPersianDigits(s string) string {
	return persianDigits.Replace(s)
}

// ToLatinDigits is the inverse of ToPersianDigits and also folds
// Arabic-Indic digits and separators.
func ToLatinDigits(s string) string {
	return latinDigits.Replace(s)
}

// GroupThousands formats n with en-US thousands separators.
func GroupThousands(n int64) string {
	return groupingPrinter.Sprintf("%d", n)
}

// FormatPrice renders a toman amount as shown on the site:
// 310320000 becomes "۳۱۰,۳۲۰,۰۰۰".
func FormatPrice(n int64) string {
	return ToPersianDigits(GroupThousands(n))
}

// FormatArea renders an area in its shortest decimal form with the unit.
func FormatArea(v float64) string {
	return ToPersianDigits(strconv.FormatFloat(v, 'f', -1, 64)) + " m²"
}
