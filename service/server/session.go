package server

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

// session feeds one client connection.
type session struct {
	id     uuid.UUID
	feed   *MatchFeed
	conn   *websocket.Conn
	logger *zap.Logger
	doneCh chan struct{}
}

// run sends the match and returns once the client left or the feed stopped.
func (s *session) run() {
	defer s.conn.Close()

	s.feed.monitor.SessionOpened()
	defer s.feed.monitor.SessionClosed()
	s.logger.Info("session: start")

	go s.reader()

	if err := s.send(matchStart(s.feed.recording)); err != nil {
		s.logger.Warn("session: matchStart", zap.Error(err))
		return
	}

	seed := s.feed.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	snapshots := s.feed.recording.Snapshots
	order := DeliveryOrder(len(snapshots), s.feed.cfg.ShuffleWindow, s.feed.cfg.Redeliver, rng)

	var sendCh <-chan time.Time
	if s.feed.cfg.SendPeriod > 0 {
		ticker := time.NewTicker(s.feed.cfg.SendPeriod)
		defer ticker.Stop()
		sendCh = ticker.C
	}

	for _, idx := range order {
		if sendCh != nil {
			select {
			case <-sendCh:
			case <-s.doneCh:
				return
			case <-s.feed.stopped():
				return
			}
		}

		if err := s.send(model.TransmitState{State: *snapshots[idx]}); err != nil {
			s.logger.Warn("session: transmitState", zap.Int("version", int(snapshots[idx].VersionNo)), zap.Error(err))
			return
		}
		s.feed.monitor.SnapshotSent()
	}
	s.logger.Info("session: match sent", zap.Int("messages", len(order)))

	// Keep the connection open until the client leaves
	select {
	case <-s.doneCh:
	case <-s.feed.stopped():
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopped"),
			time.Now().Add(writeTimeout),
		)
	}
}

// reader logs the client commands.
func (s *session) reader() {
	defer close(s.doneCh)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("session: read", zap.Error(err))
			}
			return
		}

		msg, err := model.DecodeMessage(raw)
		if err != nil {
			s.logger.Warn("session: command dropped", zap.Error(err))
			continue
		}
		s.feed.monitor.CommandReceived(msg.MessageType())

		switch m := msg.(type) {
		case *model.PassTurn:
			s.logger.Info("session: passTurn", zap.Int("version", int(m.VersionNo)))
		case *model.PlayCard:
			s.logger.Info("session: playCard", zap.Int("card", m.CardNum), zap.Int("version", int(m.VersionNo)))
		case *model.Mulligan:
			s.logger.Info("session: mulligan", zap.Bools("cards", m.Mulligan[:]))
		case *model.ExitMatch:
			s.logger.Info("session: exitMatch")
			return
		default:
			s.logger.Info("session: command", zap.String("type", string(msg.MessageType())))
		}
	}
}

func (s *session) send(msg model.Message) error {
	raw, err := model.EncodeMessage(msg)
	if err != nil {
		return err
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	return s.conn.WriteMessage(websocket.TextMessage, raw)
}
