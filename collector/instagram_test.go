package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firstPageBody = `{
	"business_discovery": {
		"media": {
			"data": [
				{
					"id": "18001",
					"caption": "Negroni night #gin",
					"media_type": "VIDEO",
					"media_url": "https://cdn.example.com/18001.mp4",
					"permalink": "https://www.instagram.com/p/abc/",
					"timestamp": "2025-07-01T19:30:00+0000"
				},
				{
					"id": "18002",
					"media_type": "IMAGE",
					"media_url": "https://cdn.example.com/18002.jpg",
					"permalink": "https://www.instagram.com/p/def/",
					"timestamp": "2025-06-30T10:00:00+0000"
				}
			],
			"paging": {"cursors": {"after": "CURSOR_2"}}
		}
	}
}`

const lastPageBody = `{
	"business_discovery": {
		"media": {
			"data": [
				{
					"id": "18003",
					"caption": "closing time",
					"media_type": "IMAGE",
					"media_url": "https://cdn.example.com/18003.jpg",
					"permalink": "https://www.instagram.com/p/ghi/",
					"timestamp": "2025-06-29T10:00:00+0000"
				}
			],
			"paging": {"cursors": {}}
		}
	}
}`

func newTestClient(handler http.HandlerFunc) (*InstagramClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewInstagramClient(server.Client(), server.URL, "v24.0", "1789", "test-token")
	return client, server
}

func TestFetchMediaPageFirstPage(t *testing.T) {
	var gotFields, gotToken string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotFields = r.URL.Query().Get("fields")
		gotToken = r.URL.Query().Get("access_token")
		w.Write([]byte(firstPageBody))
	})
	defer server.Close()

	items, next, err := client.FetchMediaPage(context.Background(), "barlife", "")
	require.Nil(t, err)
	assert.Equal(t, "CURSOR_2", next)
	require.Len(t, items, 2)
	assert.Equal(t, "18001", items[0].Id)
	assert.Equal(t, "Negroni night #gin", items[0].Caption)
	assert.Equal(t, "VIDEO", items[0].MediaType)
	// caption absent in payload decodes to empty string
	assert.Equal(t, "", items[1].Caption)

	assert.Equal(t, "business_discovery.username(barlife){media{caption,media_type,media_url,permalink,timestamp,id}}", gotFields)
	assert.Equal(t, "test-token", gotToken)
}

func TestFetchMediaPageWithCursor(t *testing.T) {
	var gotFields string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotFields = r.URL.Query().Get("fields")
		w.Write([]byte(lastPageBody))
	})
	defer server.Close()

	items, next, err := client.FetchMediaPage(context.Background(), "barlife", "CURSOR_2")
	require.Nil(t, err)
	// last page carries no next cursor
	assert.Equal(t, "", next)
	require.Len(t, items, 1)
	assert.Equal(t, "18003", items[0].Id)

	assert.Contains(t, gotFields, "media.after(CURSOR_2){")
}

func TestFetchMediaPageHttpError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusBadRequest)
	})
	defer server.Close()

	items, next, err := client.FetchMediaPage(context.Background(), "barlife", "")
	assert.NotNil(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "", next)
	assert.Contains(t, err.Error(), "400")
}

func TestFetchMediaPageMalformedBody(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})
	defer server.Close()

	items, next, err := client.FetchMediaPage(context.Background(), "barlife", "")
	assert.NotNil(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "", next)
}

func TestFetchMediaPageTransportError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // connection refused from here on

	items, next, err := client.FetchMediaPage(context.Background(), "barlife", "")
	assert.NotNil(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "", next)
}
