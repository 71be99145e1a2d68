package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_FlatShape(t *testing.T) {
	s := Session{IsLoggedIn: true, Identity: Identity{Email: "a@b.com"}}
	b, err := Encode(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isLoggedIn":true,"name":"","email":"a@b.com"}`, string(b))

	got, err := Decode(b)
	require.NoError(t, err)
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{isLoggedIn:`},
		{"wrong type", `{"isLoggedIn":"yes","email":"a@b.com"}`},
		{"missing flag", `{"name":"","email":"a@b.com"}`},
		{"array", `[]`},
		{"logged out with identity", `{"isLoggedIn":false,"name":"","email":"a@b.com"}`},
		{"logged in without email", `{"isLoggedIn":true,"name":"Ann","email":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.ErrorIs(t, err, ErrMalformed)
			assert.Equal(t, LoggedOut(), got)
		})
	}
}

func TestDecode_LoggedOutDefault(t *testing.T) {
	got, err := Decode([]byte(`{"isLoggedIn":false,"name":"","email":""}`))
	require.NoError(t, err)
	assert.Equal(t, LoggedOut(), got)
}
