package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		l, w, h float64
	}{
		{"latin", "4 3 2.8", 4, 3, 2.8},
		{"persian", "۴ ۳ ۲٫۸", 4, 3, 2.8},
		{"arabic-indic", "٤ ٣ ٢.٨", 4, 3, 2.8},
		{"decimal comma", "4,5 3 2,75", 4.5, 3, 2.75},
		{"times sign", "4×3×2.8", 4, 3, 2.8},
		{"extra spaces", "  10   7\t3 ", 10, 7, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, w, h, err := ParseDimensions(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.l, l)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestParseDimensions_Invalid(t *testing.T) {
	for _, text := range []string{"", "4 3", "4 3 2 1", "a b c", "4 3 NaN", "4 3 Inf"} {
		_, _, _, err := ParseDimensions(text)
		assert.ErrorIs(t, err, ErrDimensionsFormat, text)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := map[string]string{
		"09121234567":       "+989121234567",
		"۰۹۱۲۱۲۳۴۵۶۷":       "+989121234567",
		"9121234567":        "+989121234567",
		"989121234567":      "+989121234567",
		"+98 912 123 45 67": "+989121234567",
		"00989121234567":    "+989121234567",
		"+7 999 123-45-67":  "+79991234567",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizePhoneNumber(in), in)
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"09121234567", "+989351234567", "+79991234567", "+491711234567"}
	for _, p := range valid {
		assert.True(t, IsValidPhoneNumber(p), p)
	}

	invalid := []string{"", "123", "1234567890", "9999999999", "+982112345678", "02112345678", "12345678901234567"}
	for _, p := range invalid {
		assert.False(t, IsValidPhoneNumber(p), p)
	}
}

func TestStatusCallback(t *testing.T) {
	data := statusCallbackData(17, "processing")
	assert.Equal(t, "status:17:processing", data)

	id, status, ok := parseStatusCallback(data)
	require.True(t, ok)
	assert.Equal(t, int64(17), id)
	assert.Equal(t, "processing", status)

	for _, bad := range []string{"status:x:new", "status:1:shipped", "other:1:new", "status:1"} {
		_, _, ok := parseStatusCallback(bad)
		assert.False(t, ok, bad)
	}
}
