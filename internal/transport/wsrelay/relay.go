// Package wsrelay forwards Change Bus messages to connected WebSocket
// clients. It is a thin fan-out adapter: it never interprets a payload,
// it only subscribes on the caller's behalf and writes whatever arrives
// as a JSON frame.
package wsrelay

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lacylights/lumenserver/internal/services/bus"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 10 * time.Second
	pongWait     = 60 * time.Second
)

// Relay upgrades incoming HTTP requests to WebSocket connections and
// streams Change Bus messages for the requested topic/filter to each one.
type Relay struct {
	bus      *bus.Bus
	upgrader websocket.Upgrader
}

// New creates a Relay over b. b must not be nil.
func New(b *bus.Bus) *Relay {
	return &Relay{
		bus: b,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // subscribers are same-origin UI clients or trusted operators
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// frame is the wire shape written to every connected client: the topic and
// filter that produced it, plus the raw Change Bus payload.
type frame struct {
	Topic   string `json:"topic"`
	Filter  string `json:"filter"`
	Payload any    `json:"payload"`
}

// Handler subscribes a WebSocket connection to one topic/filter pair taken
// from the request's query string:
//
//	/ws?topic=dmx&universe=1
//	/ws?topic=cueListPlayback&cueListId=<id>
//	/ws?topic=previewSession&projectId=<id>
func (r *Relay) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		topic, filter, ok := parseSubscription(req)
		if !ok {
			http.Error(w, "unknown or missing topic", http.StatusBadRequest)
			return
		}

		conn, err := r.upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("wsrelay: upgrade failed: %v", err)
			return
		}

		r.serve(conn, topic, filter)
	}
}

func parseSubscription(req *http.Request) (bus.Topic, string, bool) {
	q := req.URL.Query()
	switch q.Get("topic") {
	case "dmx":
		universe := q.Get("universe")
		if _, err := strconv.Atoi(universe); err != nil {
			return "", "", false
		}
		return bus.TopicDMXOutput, universe, true
	case "cueListPlayback":
		if id := q.Get("cueListId"); id != "" {
			return bus.TopicCueListPlayback, id, true
		}
	case "previewSession":
		if id := q.Get("projectId"); id != "" {
			return bus.TopicPreviewSession, id, true
		}
	}
	return "", "", false
}

// serve pumps one subscription's messages to conn until the client
// disconnects or the Change Bus closes the subscription. Blocking reads are
// used only to detect client-initiated close and respond to pongs.
func (r *Relay) serve(conn *websocket.Conn, topic bus.Topic, filter string) {
	sub := r.bus.Subscribe(topic, filter)
	defer r.bus.Unsubscribe(sub)
	defer conn.Close()

	closed := make(chan struct{})
	go r.readPump(conn, closed)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-closed:
			return
		case msg, open := <-sub.Channel():
			if !open {
				return
			}
			if err := r.writeFrame(conn, topic, filter, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; its only purpose is driving the pong
// handler and signalling serve to tear down once the peer closes.
func (r *Relay) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(closed)
			return
		}
	}
}

func (r *Relay) writeFrame(conn *websocket.Conn, topic bus.Topic, filter string, payload any) error {
	body, err := json.Marshal(frame{Topic: string(topic), Filter: filter, Payload: payload})
	if err != nil {
		log.Printf("wsrelay: marshal failed: %v", err)
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, body)
}
