package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/aqsat/internal/pipeline"
)

func serve(t *testing.T, svc *Service) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/status", svc.handleStatus)
	mux.HandleFunc("/v1/events", svc.handleEvents)
	mux.HandleFunc("/v1/refresh", svc.handleRefresh)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClientRoundTrip(t *testing.T) {
	src := &scriptedSource{views: []pipeline.View{quietView(), overdueView()}}
	svc := newService(t, src, Config{DBPath: "/tmp/aqsat.db"})
	c := serve(t, svc)
	ctx := context.Background()

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.RunCount)
	assert.Equal(t, "/tmp/aqsat.db", st.DBPath)

	st, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.RunCount)

	st, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Summary.Overdue)

	events, err := c.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventSnapshot, events[0].Type)
	assert.Equal(t, EventReminder, events[2].Type)
}

func TestClientNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.Listener.Addr().String()
	srv.Close()

	_, err := NewClient(addr).Status(context.Background())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestClientUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL).Status(context.Background())
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestNewClientAddsScheme(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8797", NewClient("127.0.0.1:8797/").BaseURL())
	assert.Equal(t, "https://example.test", NewClient("https://example.test").BaseURL())
}
