// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sxm2hls/internal/upstream"
)

// fakeAPI serves a catalog of total items, pageSize per page.
type fakeAPI struct {
	total    int
	pageSize int
	failAt   int // offset whose page fails; -1 disables
	gate     chan struct{}

	calls   atomic.Int32
	offsets []int
	mu      sync.Mutex
}

func newFakeAPI(total, pageSize int) *fakeAPI {
	return &fakeAPI{total: total, pageSize: pageSize, failAt: -1}
}

func itemJSON(i int) map[string]any {
	decorations := map[string]any{}
	if i%2 == 0 {
		decorations["genre"] = "Rock"
	}
	return map[string]any{
		"entity": map[string]any{
			"id": fmt.Sprintf("ch-%03d", i),
			"texts": map[string]any{
				"title":       map[string]any{"default": fmt.Sprintf("Channel %d", i)},
				"description": map[string]any{"default": "desc"},
			},
			"images": map[string]any{
				"tile": map[string]any{
					"aspect_1x1": map[string]any{
						"preferred": map[string]any{"url": fmt.Sprintf("img/%d.png", i), "width": 300, "height": 300},
					},
				},
			},
		},
		"decorations": decorations,
	}
}

func (f *fakeAPI) items(offset int) []any {
	var out []any
	for i := offset; i < offset+f.pageSize && i < f.total; i++ {
		out = append(out, itemJSON(i))
	}
	return out
}

func (f *fakeAPI) DoJSON(_ context.Context, req upstream.Request, out any) error {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}

	offset := 0
	if req.Path == containerPath {
		body := req.Body.(map[string]any)
		sets := body["sets"].(map[string]any)[setID].(map[string]any)
		offset = sets["pagination"].(map[string]any)["offset"].(map[string]any)["setItemsOffset"].(int)
	}
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	f.mu.Unlock()

	if offset == f.failAt {
		return upstream.NewError(upstream.ErrUpstreamStatus, req.Operation, 503, nil)
	}

	var resp any
	set := map[string]any{
		"items":      f.items(offset),
		"pagination": map[string]any{"offset": map[string]any{"size": f.total}},
	}
	switch req.Path {
	case pagePath:
		resp = map[string]any{"page": map[string]any{"containers": []any{map[string]any{"sets": []any{set}}}}}
	case containerPath:
		resp = map[string]any{"container": map[string]any{"sets": []any{set}}}
	default:
		return fmt.Errorf("unexpected path %s", req.Path)
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func TestChannelsPaginationCompletenessAndOrder(t *testing.T) {
	tests := []struct {
		total       int
		pageSize    int
		wantCalls   int
		wantOffsets []int
	}{
		{total: 0, pageSize: DefaultPageSize, wantCalls: 1, wantOffsets: []int{0}},
		{total: 50, pageSize: DefaultPageSize, wantCalls: 1, wantOffsets: []int{0}},
		{total: 51, pageSize: DefaultPageSize, wantCalls: 2, wantOffsets: []int{0, 50}},
		{total: 120, pageSize: DefaultPageSize, wantCalls: 3, wantOffsets: []int{0, 50, 100}},
		{total: 150, pageSize: DefaultPageSize, wantCalls: 3, wantOffsets: []int{0, 50, 100}},
		{total: 20, pageSize: 7, wantCalls: 3, wantOffsets: []int{0, 7, 14}},
		{total: 21, pageSize: 7, wantCalls: 3, wantOffsets: []int{0, 7, 14}},
		{total: 3, pageSize: 1, wantCalls: 3, wantOffsets: []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d/page=%d", tt.total, tt.pageSize), func(t *testing.T) {
			api := newFakeAPI(tt.total, tt.pageSize)
			c := New(api, Options{PageSize: tt.pageSize})

			got, err := c.Channels(context.Background())
			require.NoError(t, err)
			require.Len(t, got, tt.total)
			assert.Equal(t, int32(tt.wantCalls), api.calls.Load())
			if diff := cmp.Diff(tt.wantOffsets, api.offsets); diff != "" {
				t.Errorf("offsets mismatch (-want +got):\n%s", diff)
			}
			for i, ch := range got {
				assert.Equal(t, fmt.Sprintf("ch-%03d", i), ch.ID)
			}
		})
	}
}

func TestChannelsRequestsIncreasingOffsets(t *testing.T) {
	api := newFakeAPI(120, DefaultPageSize)
	_, err := New(api, Options{}).Channels(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff([]int{0, 50, 100}, api.offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelRecordTransform(t *testing.T) {
	api := newFakeAPI(2, DefaultPageSize)
	got, err := New(api, Options{CDNTemplate: "https://cdn.test/{}"}).Channels(context.Background())
	require.NoError(t, err)

	want := []Channel{
		{
			ID:          "ch-000",
			Title:       "Channel 0",
			Description: "desc",
			Genre:       "Rock",
			LogoURL:     LogoURL("https://cdn.test/{}", "img/0.png", 300, 300),
			ListenPath:  "/listen/ch-000",
		},
		{
			ID:          "ch-001",
			Title:       "Channel 1",
			Description: "desc",
			Genre:       "",
			LogoURL:     LogoURL("https://cdn.test/{}", "img/1.png", 300, 300),
			ListenPath:  "/listen/ch-001",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("channels mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelsFailureNotCached(t *testing.T) {
	api := newFakeAPI(120, DefaultPageSize)
	api.failAt = 100
	c := New(api, Options{})

	_, err := c.Channels(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, upstream.ErrUpstreamStatus))
	assert.False(t, c.Loaded())

	api.failAt = -1
	got, err := c.Channels(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 120)
	assert.Equal(t, int32(6), api.calls.Load(), "second call starts pagination over")
	assert.True(t, c.Loaded())

	_, err = c.Channels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(6), api.calls.Load(), "success is cached")
}

func TestChannelsConcurrentCallersCoalesce(t *testing.T) {
	api := newFakeAPI(10, DefaultPageSize)
	api.gate = make(chan struct{})
	c := New(api, Options{})

	const callers = 10
	var wg sync.WaitGroup
	results := make([][]Channel, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := c.Channels(context.Background())
			assert.NoError(t, err)
			results[i] = list
		}(i)
	}

	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	assert.Equal(t, int32(1), api.calls.Load())
	for _, list := range results {
		assert.Len(t, list, 10)
	}
}

func TestChannelsReturnsCopy(t *testing.T) {
	c := New(newFakeAPI(3, DefaultPageSize), Options{})
	first, err := c.Channels(context.Background())
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := c.Channels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Channel 0", second[0].Title)
}

func TestMissingItemSetIsResolutionError(t *testing.T) {
	api := requesterFunc(func(_ context.Context, _ upstream.Request, out any) error {
		return json.Unmarshal([]byte(`{"page":{"containers":[]}}`), out)
	})
	_, err := New(api, Options{}).Channels(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, upstream.ErrResolution))
}

type requesterFunc func(ctx context.Context, req upstream.Request, out any) error

func (f requesterFunc) DoJSON(ctx context.Context, req upstream.Request, out any) error {
	return f(ctx, req, out)
}

func TestLogoURL(t *testing.T) {
	got := LogoURL("https://cdn.test/{}", "a/b.png", 320, 240)
	assert.Equal(t, got, LogoURL("https://cdn.test/{}", "a/b.png", 320, 240), "deterministic")

	encoded := strings.TrimPrefix(got, "https://cdn.test/")
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, `{"key":"a/b.png","edits":[{"format":{"type":"jpeg"}},{"resize":{"width":320,"height":240}}]}`, string(raw))
}

func TestLogoURLNoHTMLEscaping(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(LogoURL("x/{}", "a&b<c>", 1, 1), "x/"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"a&b<c>"`)
}
