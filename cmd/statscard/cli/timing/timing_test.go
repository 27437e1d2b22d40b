package timing

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasure_PropagatesError(t *testing.T) {
	sentinel := errors.New("fetch failed")
	elapsed, err := Measure(func() error { return sentinel })
	require.ErrorIs(t, err, sentinel)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
}

func TestMeasure_TimesTheCall(t *testing.T) {
	elapsed, err := Measure(func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5000 s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "250.0000 ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "0.5000 ms", FormatDuration(500*time.Microsecond))
}

func TestReport_TotalAndRender(t *testing.T) {
	var r Report
	r.Add("account data", 120*time.Millisecond)
	r.Add("contribution ledger", 2*time.Second)

	assert.Equal(t, 2120*time.Millisecond, r.Total())

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "account data")
	assert.Contains(t, out, "contribution ledger")
	assert.Contains(t, out, "2.0000 s")
	assert.Contains(t, out, "TOTAL") // go-pretty upper-cases the footer
}
