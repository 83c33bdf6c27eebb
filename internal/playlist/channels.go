// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import "github.com/ManuGH/sxm2hls/internal/catalog"

// Items maps catalog channels to master playlist entries in catalog order.
func Items(channels []catalog.Channel) []Item {
	items := make([]Item, 0, len(channels))
	for _, ch := range channels {
		items = append(items, Item{
			Name:  ch.Title,
			Logo:  ch.LogoURL,
			Group: ch.Genre,
			URL:   ch.ListenPath,
		})
	}
	return items
}
