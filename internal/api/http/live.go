package httpapi

import (
	"net/http"
	"time"

	"restaurant-reviews/internal/eventpublisher/event"
	"restaurant-reviews/internal/model"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"
)

const (
	liveWriteWait  = time.Second * 10
	livePongWait   = time.Second * 60
	livePingPeriod = livePongWait * 9 / 10
	liveBuffer     = 8
)

type liveMessage struct {
	Type   string       `json:"type"`
	Review model.Review `json:"review"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveReviewsHandler streams newly added reviews. A client that falls behind is
// dropped by the publisher, which ends the stream.
func (s *Server) liveReviewsHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.LiveFeed == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Live feed unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	events := make(chan event.Event, liveBuffer)
	s.deps.LiveFeed.Subscribe(events)
	defer s.deps.LiveFeed.Unsubscribe(events)

	// the read pump only exists to notice the client going away and to handle pongs
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if e.Err != nil {
				continue
			}
			if err := conn.WriteJSON(liveMessage{Type: "review", Review: e.Review}); err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("ws write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
