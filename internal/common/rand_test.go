package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	s1, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.Len(t, s1, 32)

	s2, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.NotEqual(t, s1, s2, "two random strings should differ")
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("secret")
	WipeByteArray(b)
	for i, v := range b {
		require.Zerof(t, v, "byte %d not wiped", i)
	}

	WipeByteArray(nil) // must not panic
}
