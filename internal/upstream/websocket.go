package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/feed"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/gorilla/websocket"
)

// FeedDialer opens websocket subscriptions to the live order feeds
type FeedDialer struct {
	baseURL string
	ws      *websocket.Dialer
}

// NewFeedDialer creates a dialer for baseURL, e.g.
// "wss://norma.nomoreparties.space".
func NewFeedDialer(baseURL string) *FeedDialer {
	return &FeedDialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		ws: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Public returns a dialer for the feed of all orders
func (d *FeedDialer) Public() feed.Dialer {
	return feed.DialerFunc(func(ctx context.Context) (feed.Stream, error) {
		return d.dial(ctx, d.baseURL+"/orders/all")
	})
}

// Profile returns a dialer for the orders of the token's owner
func (d *FeedDialer) Profile(token string) feed.Dialer {
	return feed.DialerFunc(func(ctx context.Context) (feed.Stream, error) {
		return d.dial(ctx, d.baseURL+"/orders?token="+url.QueryEscape(RawToken(token)))
	})
}

func (d *FeedDialer) dial(ctx context.Context, target string) (feed.Stream, error) {
	conn, _, err := d.ws.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: dial feed: %w", err)
	}
	st := &wsStream{
		conn:     conn,
		messages: make(chan models.FeedSnapshot),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go st.read()
	return st, nil
}

// wsStream reads on its own goroutine so Recv can honour cancellation.
// Sequence numbers follow receipt order on this connection.
type wsStream struct {
	conn     *websocket.Conn
	messages chan models.FeedSnapshot
	done     chan struct{}
	closed   chan struct{}
	readErr  error
	seq      uint64
	once     sync.Once
}

func (s *wsStream) read() {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.readErr = err
			return
		}

		var msg feedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.readErr = fmt.Errorf("upstream: decode feed message: %w", err)
			return
		}
		if !msg.Success {
			s.readErr = fmt.Errorf("upstream: feed refused: %s", msg.Message)
			return
		}

		s.seq++
		snap := models.FeedSnapshot{
			Orders:     make([]models.Order, 0, len(msg.Orders)),
			Total:      msg.Total,
			TotalToday: msg.TotalToday,
			Sequence:   s.seq,
			ReceivedAt: time.Now(),
		}
		for _, o := range msg.Orders {
			snap.Orders = append(snap.Orders, o.model())
		}

		select {
		case s.messages <- snap:
		case <-s.closed:
			return
		}
	}
}

func (s *wsStream) Recv(ctx context.Context) (models.FeedSnapshot, error) {
	select {
	case <-ctx.Done():
		return models.FeedSnapshot{}, ctx.Err()
	case snap := <-s.messages:
		return snap, nil
	case <-s.done:
		if s.readErr == nil {
			return models.FeedSnapshot{}, errors.New("upstream: feed closed")
		}
		return models.FeedSnapshot{}, s.readErr
	}
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}
