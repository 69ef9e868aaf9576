package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/logger"
)

var (
	wsConnectionAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spinspot_realtime_connection_attempts_total",
		Help: "The total number of connection attempts to the post-insert stream",
	})

	wsConnectionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spinspot_realtime_connection_errors_total",
		Help: "The total number of stream connection errors encountered",
	})

	wsEventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spinspot_realtime_events_received_total",
		Help: "The total number of post-insert events received from the stream",
	})
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// StreamClient subscribes to the hosted data store's post-insert websocket
// channel and republishes each insert into the in-process hub. Remote
// inserts from other app instances reach local feed subscribers this way.
type StreamClient struct {
	url   string
	token string
	hub   *Hub
}

// NewStreamClient builds a StreamClient from config.
func NewStreamClient(cfg *config.Config, hub *Hub) *StreamClient {
	return &StreamClient{
		url:   cfg.RealtimeWSURL,
		token: cfg.RealtimeToken,
		hub:   hub,
	}
}

// Run connects and consumes the stream until ctx is cancelled, reconnecting
// with exponential backoff on failure.
func (c *StreamClient) Run(ctx context.Context) error {
	log := logger.GetLogger("realtime")

	if c.url == "" {
		log.Info("REALTIME_WS_URL not set, post-insert stream disabled")
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0 // reconnect forever

	operation := func() error {
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			wsConnectionErrors.Inc()
			log.Warnf("post-insert stream disconnected: %v", err)
			return err
		}
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *StreamClient) consume(ctx context.Context) error {
	log := logger.GetLogger("realtime")
	wsConnectionAttempts.Inc()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("failed to dial stream: %w", err)
	}
	defer conn.Close()

	log.Infof("connected to post-insert stream at %s", c.url)

	// Close the connection when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	go c.pingLoop(ctx, conn)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("stream read failed: %w", err)
		}

		var event PostEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warnf("skipping malformed stream message: %v", err)
			continue
		}

		wsEventsReceived.Inc()
		c.hub.Publish(event)
	}
}

func (c *StreamClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
