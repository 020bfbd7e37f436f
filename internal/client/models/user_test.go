package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"ok minimum", "bob", nil},
		{"ok longer", "bob_the_builder", nil},
		{"too short", "bo", ErrUsernameTooShort},
		{"empty", "", ErrUsernameTooShort},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUser_MarshalRoundTrip(t *testing.T) {
	u := &User{UID: "U1", Email: "bob@example.com", Username: "bob", Name: "Bob"}

	data, err := u.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalUser(data)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestUnmarshalUser_BadPayload(t *testing.T) {
	_, err := UnmarshalUser([]byte("{not json"))
	require.Error(t, err)
}
