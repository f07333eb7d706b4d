package net

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnnotateBoard/internal/export"
)

func newTestStore(t *testing.T, token string) (*Store, *httptest.Server) {
	t.Helper()
	store, err := NewStore(t.TempDir(), "psat-1", token)
	require.NoError(t, err)
	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)
	return store, srv
}

func dataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 255, A: 255})
	uri, err := export.DataURI(img)
	require.NoError(t, err)
	return uri
}

func TestGatewaySaveLoadFetch(t *testing.T) {
	_, srv := newTestStore(t, "secret")
	gw := NewHTTPGateway(srv.URL+AnnotatePath, "secret")
	ctx := context.Background()

	_, err := gw.Load(ctx, "normal")
	assert.ErrorIs(t, err, ErrNoAnnotation)

	require.NoError(t, gw.Save(ctx, "normal", dataURI(t)))
	first, err := gw.Load(ctx, "normal")
	require.NoError(t, err)
	assert.Contains(t, first, MediaPath+"psat-1_")

	require.NoError(t, gw.Save(ctx, "normal", dataURI(t)))
	second, err := gw.Load(ctx, "normal")
	require.NoError(t, err)
	assert.Equal(t, first, second, "saving again replaces the same file")

	img, err := gw.Fetch(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	_, err = gw.Load(ctx, "wide")
	assert.ErrorIs(t, err, ErrNoAnnotation)
}

func TestGatewaySaveErrors(t *testing.T) {
	_, srv := newTestStore(t, "secret")
	ctx := context.Background()

	err := NewHTTPGateway(srv.URL+AnnotatePath, "wrong").Save(ctx, "normal", dataURI(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	err = NewHTTPGateway(srv.URL+AnnotatePath, "secret").Save(ctx, "normal", "data:image/gif;base64,AAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image format")
}

func TestStoreIndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "ref", "")
	require.NoError(t, err)
	srv := httptest.NewServer(store.Handler())
	gw := NewHTTPGateway(srv.URL+AnnotatePath, "")
	require.NoError(t, gw.Save(context.Background(), "wide", dataURI(t)))
	srv.Close()

	reopened, err := NewStore(dir, "ref", "")
	require.NoError(t, err)
	name := reopened.index["wide"]
	require.NotEmpty(t, name)
	_, err = os.Stat(filepath.Join(dir, name))
	assert.NoError(t, err)
}

func TestLiveFeedReportsSaves(t *testing.T) {
	store, srv := newTestStore(t, "")
	live, err := LiveURL(srv.URL + AnnotatePath + "?annotate_type=normal")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events := make(chan Event, 1)
	go Watch(ctx, live, func(ev Event) { events <- ev })

	require.Eventually(t, func() bool { return store.Hub().Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, NewHTTPGateway(srv.URL+AnnotatePath, "").Save(ctx, "normal", dataURI(t)))

	select {
	case ev := <-events:
		assert.Equal(t, EventSaved, ev.Type)
		assert.Equal(t, "normal", ev.AnnotateType)
	case <-ctx.Done():
		t.Fatal("no live event received")
	}
}

func TestLiveURL(t *testing.T) {
	u, err := LiveURL("https://example.com/psat/annotate/3?annotate_type=x")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/live", u)
}

func TestBroadcastDropsClientsThatFailWrites(t *testing.T) {
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(peer.Close)
	wsURL := "ws" + strings.TrimPrefix(peer.URL, "http")

	dial := func() *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	hub := NewHub()
	healthy, broken := dial(), dial()
	hub.add(healthy)
	hub.add(broken)
	require.NoError(t, broken.UnderlyingConn().Close())

	hub.Broadcast(Event{Type: EventSaved, AnnotateType: "normal"})
	assert.Equal(t, 1, hub.Len())

	hub.Broadcast(Event{Type: EventSaved, AnnotateType: "wide"})
	assert.Equal(t, 1, hub.Len(), "healthy client is kept")
}
