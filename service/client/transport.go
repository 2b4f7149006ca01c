package client

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

const (
	readLimit    = 1 << 20 // 1MB
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	writeTimeout = 10 * time.Second
)

// Transport is a websocket connection to the match server.
// Inbound messages are decoded by a reader goroutine and delivered to the inbox channel.
type Transport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	logger  *zap.Logger
	//
	inbox  chan model.Message
	errCh  chan error
	stopCh chan struct{}
	once   sync.Once
}

// Send implements playback.CommandSink interface.
func (t *Transport) Send(msg model.Message) error {
	raw, err := model.EncodeMessage(msg)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := t.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}

	t.logger.Debug("command sent", zap.String("type", string(msg.MessageType())))

	return nil
}

// Inbox returns the decoded inbound messages channel (closed when the connection is gone).
func (t *Transport) Inbox() <-chan model.Message {
	return t.inbox
}

// Errors returns the terminal connection error channel.
func (t *Transport) Errors() <-chan error {
	return t.errCh
}

// Close closes the connection.
func (t *Transport) Close() {
	t.once.Do(func() {
		close(t.stopCh)

		t.writeMu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMu.Unlock()

		t.conn.Close()
	})
}

// reader decodes inbound frames until the connection fails.
func (t *Transport) reader() {
	defer close(t.inbox)

	for {
		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.stopCh:
			default:
				t.errCh <- fmt.Errorf("websocket read: %w", err)
			}
			return
		}

		msg, err := model.DecodeMessage(raw)
		if err != nil {
			// A malformed frame is not fatal
			t.logger.Warn("inbound message dropped", zap.Error(err))
			continue
		}

		select {
		case t.inbox <- msg:
		case <-t.stopCh:
			return
		}
	}
}

// pinger keeps the connection alive.
func (t *Transport) pinger() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.writeMu.Lock()
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := t.conn.WriteMessage(websocket.PingMessage, nil)
			t.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// DialTransport connects to the server, retrying while the connection is refused.
func DialTransport(serverUrl string, numOfRetries int, retryFallbackDur time.Duration, logger *zap.Logger) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var conn *websocket.Conn
	for retry := 0; retry <= numOfRetries; retry++ {
		c, _, err := websocket.DefaultDialer.Dial(serverUrl, nil)
		if err == nil {
			conn = c
			break
		}

		var sysErr *os.SyscallError
		var netErr *net.OpError
		if errors.As(err, &netErr) && errors.As(err, &sysErr) && sysErr.Err == syscall.ECONNREFUSED {
			logger.Debug("connection refused, retrying", zap.Int("retry", retry), zap.Duration("fallback", retryFallbackDur))
			time.Sleep(retryFallbackDur)
			continue
		}

		return nil, fmt.Errorf("websocket dial (%s): %w", serverUrl, err)
	}
	if conn == nil {
		return nil, fmt.Errorf("connection failed after %d retries with %v fallback", numOfRetries, retryFallbackDur)
	}

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	t := &Transport{
		conn:   conn,
		logger: logger,
		inbox:  make(chan model.Message, 256),
		errCh:  make(chan error, 1),
		stopCh: make(chan struct{}),
	}
	go t.reader()
	go t.pinger()

	return t, nil
}
