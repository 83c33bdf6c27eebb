// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

// Curated-grouping identifiers of the "all channels" listing.
const (
	pageID      = "403ab6a5-d3c9-4c2a-a722-a94a6a5fd056"
	containerID = "3JoBfOCIwo6FmTpzM1S2H7"
	setID       = "5mqCLZ21qAwnufKT8puUiM"

	pagePath      = "browse/v1/pages/curated-grouping/" + pageID + "/view"
	containerPath = "browse/v1/pages/curated-grouping/" + pageID + "/containers/" + containerID + "/view"

	sortChannelNumber = "CHANNEL_NUMBER_ASC"
	containerLimit    = 3
)

type pageResponse struct {
	Page struct {
		Containers []struct {
			Sets []itemSet `json:"sets"`
		} `json:"containers"`
	} `json:"page"`
}

type containerResponse struct {
	Container struct {
		Sets []itemSet `json:"sets"`
	} `json:"container"`
}

type itemSet struct {
	Items      []item `json:"items"`
	Pagination struct {
		Offset struct {
			Size int `json:"size"`
		} `json:"offset"`
	} `json:"pagination"`
}

type item struct {
	Entity struct {
		ID    string `json:"id"`
		Texts struct {
			Title       localized `json:"title"`
			Description localized `json:"description"`
		} `json:"texts"`
		Images struct {
			Tile struct {
				Square struct {
					Preferred image `json:"preferred"`
				} `json:"aspect_1x1"`
			} `json:"tile"`
		} `json:"images"`
	} `json:"entity"`
	Decorations struct {
		Genre string `json:"genre"`
	} `json:"decorations"`
}

type localized struct {
	Default string `json:"default"`
}

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func filterAll() map[string]any {
	return map[string]any{"one": map[string]any{"filterId": "all"}}
}

func sortByNumber() map[string]any {
	return map[string]any{"sortId": sortChannelNumber}
}

func firstPageBody(pageSize int) map[string]any {
	return map[string]any{
		"containerConfiguration": map[string]any{
			containerID: map[string]any{
				"filter": filterAll(),
				"sets": map[string]any{
					setID: map[string]any{"sort": sortByNumber()},
				},
			},
		},
		"pagination": map[string]any{
			"offset": map[string]any{
				"containerLimit": containerLimit,
				"setItemsLimit":  pageSize,
			},
		},
		"deviceCapabilities": map[string]any{"supportsDownloads": false},
	}
}

func nextPageBody(offset, pageSize int) map[string]any {
	return map[string]any{
		"filter": filterAll(),
		"sets": map[string]any{
			setID: map[string]any{
				"sort": sortByNumber(),
				"pagination": map[string]any{
					"offset": map[string]any{
						"setItemsOffset": offset,
						"setItemsLimit":  pageSize,
					},
				},
			},
		},
		"pagination": map[string]any{
			"offset": map[string]any{"setItemsLimit": pageSize},
		},
	}
}
