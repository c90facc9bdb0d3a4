package httpcache

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarnCode_ParsesLeadingThreeDigits(t *testing.T) {
	code, ok := warnCode(`110 - "Response is Stale"`)
	assert.True(t, ok)
	assert.Equal(t, 110, code)
}

func TestWarnCode_RejectsNonNumericOrShortPrefix(t *testing.T) {
	_, ok := warnCode(`one hundred`)
	assert.False(t, ok)

	_, ok = warnCode(`1 - "too short"`)
	assert.False(t, ok)
}

func TestStripWarningsByLeadingDigit_OnlyStripsMatchingCodeClass(t *testing.T) {
	headers := http.Header{}
	headers.Add("Warning", `110 - "Response is Stale"`)
	headers.Add("Warning", `199 - "Miscellaneous Warning"`)
	headers.Add("Warning", `299 - "Miscellaneous Persistent Warning"`)

	stripWarningsByLeadingDigit(headers, '1')

	assert.Equal(t, []string{`299 - "Miscellaneous Persistent Warning"`}, headers.Values("Warning"))
}

func TestStripWarningsByLeadingDigit_DoesNotMatchOnFreeTextDigit(t *testing.T) {
	headers := http.Header{}
	// The warn-text begins with a digit but the warn-code itself is 299, not 1xx.
	headers.Add("Warning", `299 - "100% broken"`)

	stripWarningsByLeadingDigit(headers, '1')

	assert.Equal(t, []string{`299 - "100% broken"`}, headers.Values("Warning"))
}

func TestAddStaleAndRevalidationFailedWarnings_Stack(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	addStaleWarning(resp)
	addRevalidationFailedWarning(resp)

	values := resp.Header.Values("Warning")
	assert.Len(t, values, 2)
	assert.Contains(t, values[0], "110")
	assert.Contains(t, values[1], "111")
}
