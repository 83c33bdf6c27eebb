// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playlist renders the master playlist and rewrites upstream media
// playlists into the relay's local path scheme.
package playlist

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ContentType is sent with every playlist response.
const ContentType = "application/x-mpegURL"

// Item is one master playlist entry.
type Item struct {
	Name  string
	Logo  string
	Group string
	URL   string
}

// WriteM3U writes the master playlist: the header line followed by one
// EXTINF/URL pair per item, newline separated without a trailing newline.
func WriteM3U(w io.Writer, items []Item) error {
	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U")
	for _, it := range items {
		fmt.Fprintf(buf, "\n#EXTINF:-1 tvg-logo=\"%s\" group-title=\"%s\",%s\n%s",
			attr(it.Logo), attr(it.Group), text(it.Name), it.URL)
	}
	_, err := io.Copy(w, buf)
	return err
}

// attr normalizes an attribute value; a double quote would end the attribute early.
func attr(s string) string {
	return strings.ReplaceAll(text(s), `"`, "'")
}

// text NFC-normalizes and flattens line breaks, which would split the entry.
func text(s string) string {
	s = norm.NFC.String(s)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
