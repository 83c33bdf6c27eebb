// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import "encoding/json"

// GrantKind tells which kind of login step produced a bearer credential.
type GrantKind int

const (
	// GrantNone means the response carried no credential.
	GrantNone GrantKind = iota
	// GrantDevice is a device/anonymous grant (response field "grant").
	GrantDevice
	// GrantAccess is a session access token (response field "accessToken").
	GrantAccess
)

func (k GrantKind) String() string {
	switch k {
	case GrantDevice:
		return "device"
	case GrantAccess:
		return "access"
	default:
		return "none"
	}
}

// Grant is a bearer credential tagged with its origin.
type Grant struct {
	Kind  GrantKind
	Token string
}

// Valid reports whether the grant carries a token.
func (g Grant) Valid() bool {
	return g.Kind != GrantNone && g.Token != ""
}

// grantFrom extracts the credential from a login response body. The "grant"
// field takes precedence over "accessToken" when both are present.
func grantFrom(body []byte) Grant {
	var p struct {
		Grant       string `json:"grant"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Grant{}
	}
	switch {
	case p.Grant != "":
		return Grant{Kind: GrantDevice, Token: p.Grant}
	case p.AccessToken != "":
		return Grant{Kind: GrantAccess, Token: p.AccessToken}
	}
	return Grant{}
}
