package httpcache

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_ParsesRFC1123(t *testing.T) {
	headers := http.Header{"Date": []string{"Fri, 14 Dec 2010 01:01:50 GMT"}}
	d, err := Date(headers)
	require.NoError(t, err)
	assert.Equal(t, 2010, d.Year())
}

func TestDate_MissingHeaderReturnsErrNoDateHeader(t *testing.T) {
	_, err := Date(http.Header{})
	assert.ErrorIs(t, err, ErrNoDateHeader)
}

func TestParseAgeHeader_UsesFirstValueOnDuplicates(t *testing.T) {
	headers := http.Header{"Age": []string{"60", "120"}}
	age, ok := parseAgeHeader(headers, slog.Default())
	assert.True(t, ok)
	assert.Equal(t, 60*time.Second, age)
}

func TestParseAgeHeader_NegativeIsInvalid(t *testing.T) {
	headers := http.Header{"Age": []string{"-5"}}
	_, ok := parseAgeHeader(headers, slog.Default())
	assert.False(t, ok)
}

func TestParseAgeHeader_NonNumericIsInvalid(t *testing.T) {
	headers := http.Header{"Age": []string{"not-a-number"}}
	_, ok := parseAgeHeader(headers, slog.Default())
	assert.False(t, ok)
}

func TestParseAgeHeader_MissingIsInvalid(t *testing.T) {
	_, ok := parseAgeHeader(http.Header{}, slog.Default())
	assert.False(t, ok)
}

func TestFormatAge_ClampsNegativeToZero(t *testing.T) {
	assert.Equal(t, "0", formatAge(-5*time.Second))
	assert.Equal(t, "42", formatAge(42*time.Second))
}
