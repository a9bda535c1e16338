package xkcd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/glabrego/xkcd-cli/internal/transport"
)

const comic614 = `{
  "month": "7", "num": 614, "link": "", "year": "2009", "news": "",
  "safe_title": "Woodpecker",
  "transcript": "[[A man with a beret and a woman are standing on a boardwalk]]",
  "alt": "If you don't have an extension cord I can get that too.",
  "img": "https://imgs.xkcd.com/comics/woodpecker.png",
  "title": "Woodpecker", "day": "24"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", transport.New(nil, transport.Options{}))
}

func TestClient_Get(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(comic614))
	})

	comic, err := client.Get(context.Background(), 614)
	require.NoError(t, err)
	require.Equal(t, "/614/info.0.json", gotPath)
	require.Equal(t, 614, comic.Num)
	require.Equal(t, "Woodpecker", comic.SafeTitle)
	require.Equal(t, "24", comic.Day)
	require.Equal(t, client.baseURL+"/614/", comic.Permalink)
}

func TestClient_Latest(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"num":3000,"safe_title":"Latest","title":"Latest","day":"1","month":"1","year":"2025"}`))
	})

	comic, err := client.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/info.0.json", gotPath)
	require.Equal(t, 3000, comic.Num)
}

func TestClient_Get_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Get(context.Background(), 404)
	require.ErrorIs(t, err, transport.ErrNotFound)
}

func TestClient_Get_RejectsMissingNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"title":"no number"}`))
	})

	_, err := client.Get(context.Background(), 7)
	require.ErrorIs(t, err, transport.ErrDecode)
}

func TestClient_Get_RejectsNonPositive(t *testing.T) {
	client := NewClient("", nil)
	_, err := client.Get(context.Background(), 0)
	require.Error(t, err)
}

func TestComic_JSONRoundTrip(t *testing.T) {
	var decoded Comic
	require.NoError(t, json.Unmarshal([]byte(comic614), &decoded))
	decoded.Permalink = "https://xkcd.com/614/"
	decoded.Explanation = "A woodpecker keeps pecking."

	encoded, err := json.Marshal(decoded)
	require.NoError(t, err)

	var again Comic
	require.NoError(t, json.Unmarshal(encoded, &again))
	if diff := cmp.Diff(decoded, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestComic_DisplayTitle(t *testing.T) {
	require.Equal(t, "Safe", Comic{Title: "Raw", SafeTitle: "Safe"}.DisplayTitle())
	require.Equal(t, "Raw", Comic{Title: "Raw"}.DisplayTitle())
}
