package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevelWithTestify(t *testing.T) {
	require.Equal(t, parseLevel("debug").String(), "DEBUG")
	require.Equal(t, parseLevel("warn").String(), "WARN")
	require.Equal(t, parseLevel("unknown").String(), "INFO")
}

func TestExitCoderWraps(t *testing.T) {
	base := require.New(t)
	inner := validationError(errTest{"bad input"})
	base.EqualError(inner, "bad input")
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
