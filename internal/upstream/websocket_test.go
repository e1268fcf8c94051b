package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/feed"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// feedServer sends messages to every connection and then holds it open
func feedServer(t *testing.T, messages ...string) (*FeedDialer, chan *http.Request) {
	t.Helper()
	requests := make(chan *http.Request, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return NewFeedDialer("ws" + strings.TrimPrefix(srv.URL, "http")), requests
}

func TestPublicFeedStream(t *testing.T) {
	d, requests := feedServer(t,
		`{"success":true,"orders":[{"number":1,"status":"done","ingredients":["a"]}],"total":10,"totalToday":2}`,
		`{"success":true,"orders":[{"number":2,"status":"pending","ingredients":[]}],"total":11,"totalToday":3}`,
	)

	st, err := d.Public().Dial(context.Background())
	require.NoError(t, err)
	defer st.Close()

	r := <-requests
	assert.Equal(t, "/orders/all", r.URL.Path)

	first, err := st.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, first.Total)
	assert.Equal(t, 1, first.Orders[0].Number)

	second, err := st.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, second.Total)
	assert.Greater(t, second.Sequence, first.Sequence)
}

func TestProfileFeedSendsRawToken(t *testing.T) {
	d, requests := feedServer(t)

	st, err := d.Profile("Bearer secret").Dial(context.Background())
	require.NoError(t, err)
	defer st.Close()

	r := <-requests
	assert.Equal(t, "/orders", r.URL.Path)
	assert.Equal(t, "secret", r.URL.Query().Get("token"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = st.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRefusedFeedIsAnError(t *testing.T) {
	d, _ := feedServer(t, `{"success":false,"message":"Invalid or missing token"}`)

	st, err := d.Profile("bad").Dial(context.Background())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Recv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or missing token")
}

func TestSynchronizerOverWebsocket(t *testing.T) {
	d, _ := feedServer(t, `{"success":true,"orders":[],"total":5,"totalToday":1}`)

	s := feed.NewSynchronizer("public", d.Public())
	require.NoError(t, s.Connect(context.Background()))
	require.Eventually(t, func() bool { return s.Status() == feed.StatusOnline }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, s.View().Snapshot.Total)
	s.Disconnect()
}

func TestDialFailure(t *testing.T) {
	d := NewFeedDialer("ws://127.0.0.1:1")
	_, err := d.Public().Dial(context.Background())
	assert.Error(t, err)
}
