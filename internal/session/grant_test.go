// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrantFrom(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Grant
	}{
		{"grant field", `{"grant":"g"}`, Grant{Kind: GrantDevice, Token: "g"}},
		{"access token", `{"accessToken":"a"}`, Grant{Kind: GrantAccess, Token: "a"}},
		{"grant wins", `{"grant":"g","accessToken":"a"}`, Grant{Kind: GrantDevice, Token: "g"}},
		{"neither", `{"identityId":"x"}`, Grant{}},
		{"not json", `<html>`, Grant{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grantFrom([]byte(tt.body))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Token != "", got.Valid())
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "access", GrantAccess.String())
}
