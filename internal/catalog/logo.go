// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// DefaultCDNTemplate is the image server URL; "{}" is replaced by the encoded request.
const DefaultCDNTemplate = "https://imgsrv-sxm-prod-device.streaming.siriusxm.com/{}"

type logoRequest struct {
	Key   string     `json:"key"`
	Edits []logoEdit `json:"edits"`
}

type logoEdit struct {
	Format *logoFormat `json:"format,omitempty"`
	Resize *logoResize `json:"resize,omitempty"`
}

type logoFormat struct {
	Type string `json:"type"`
}

type logoResize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LogoURL builds the image server URL for an artwork key resized to w x h as JPEG.
// The result is deterministic for equal inputs.
func LogoURL(template, key string, width, height int) string {
	req := logoRequest{
		Key: key,
		Edits: []logoEdit{
			{Format: &logoFormat{Type: "jpeg"}},
			{Resize: &logoResize{Width: width, Height: height}},
		},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings and ints cannot fail.
	_ = enc.Encode(req)
	encoded := base64.StdEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	if template == "" {
		template = DefaultCDNTemplate
	}
	return strings.Replace(template, "{}", encoded, 1)
}
