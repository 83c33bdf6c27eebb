// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tuner

import (
	"bufio"
	"bytes"
	"path"
	"strings"
)

// DefaultBitrate is the variant marker picked when none is configured.
const DefaultBitrate = "256k"

// VariantPolicy decides which variant of a multi-bitrate playlist is relayed.
type VariantPolicy struct {
	// Bitrate is a substring every acceptable variant line contains, e.g. "256k".
	Bitrate string
}

// SelectVariant returns the first playlist line that contains the policy's
// bitrate marker and ends with ".m3u8".
func SelectVariant(body []byte, policy VariantPolicy) (string, bool) {
	marker := policy.Bitrate
	if marker == "" {
		marker = DefaultBitrate
	}
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, marker) && strings.HasSuffix(line, ".m3u8") {
			return line, true
		}
	}
	return "", false
}

// hlsTag is the directory part of a variant path, empty for a bare file name.
func hlsTag(variant string) string {
	dir := path.Dir(variant)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
