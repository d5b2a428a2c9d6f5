package bot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"cabino/internal/estimator"
	"cabino/internal/storage"
)

var ErrDimensionsFormat = errors.New("expected three numbers: length width height")

// ParseDimensions reads "length width height" in meters. Persian and
// Arabic-Indic digits are accepted, as is a decimal comma.
func ParseDimensions(text string) (length, width, height float64, err error) {
	text = estimator.ToLatinDigits(strings.TrimSpace(text))

	parts := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == 'x' || r == 'X' || r == '×' || r == '*'
	})
	if len(parts) != 3 {
		return 0, 0, 0, ErrDimensionsFormat
	}

	var values [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.ReplaceAll(p, ",", "."), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, fmt.Errorf("%w: %q is not a number", ErrDimensionsFormat, p)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizePhoneNumber brings Iranian numbers to +98XXXXXXXXXX and keeps
// other international numbers as + followed by digits.
func NormalizePhoneNumber(phone string) string {
	phone = strings.TrimSpace(estimator.ToLatinDigits(phone))
	cleaned := digitsOnly(phone)

	switch {
	case strings.HasPrefix(cleaned, "0098"):
		return "+98" + cleaned[4:]
	case strings.HasPrefix(cleaned, "98") && len(cleaned) == 12:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "09") && len(cleaned) == 11:
		return "+98" + cleaned[1:]
	case strings.HasPrefix(cleaned, "9") && len(cleaned) == 10:
		return "+98" + cleaned
	}

	if strings.HasPrefix(phone, "+") {
		return "+" + cleaned
	}
	return cleaned
}

var badNumbers = map[string]bool{
	"0000000000": true,
	"1111111111": true,
	"1234567890": true,
	"9999999999": true,
	"0123456789": true,
}

// IsValidPhoneNumber accepts Iranian mobiles (+989XXXXXXXXX) and other
// international numbers of 10 to 15 digits.
func IsValidPhoneNumber(phone string) bool {
	normalized := NormalizePhoneNumber(phone)
	digits := digitsOnly(normalized)

	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	if badNumbers[digits] || badNumbers[digits[len(digits)-10:]] {
		return false
	}
	if strings.HasPrefix(normalized, "+98") {
		return len(digits) == 12 && digits[2] == '9'
	}
	return strings.HasPrefix(normalized, "+")
}

const statusCallbackPrefix = "status"

func statusCallbackData(leadID int64, status string) string {
	return fmt.Sprintf("%s:%d:%s", statusCallbackPrefix, leadID, status)
}

func parseStatusCallback(data string) (int64, string, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != statusCallbackPrefix {
		return 0, "", false
	}
	leadID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || !storage.ValidStatus(parts[2]) {
		return 0, "", false
	}
	return leadID, parts[2], true
}
