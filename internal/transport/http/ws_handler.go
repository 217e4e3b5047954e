package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"addition-drill/internal/app"
	"addition-drill/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs one drill controller per WebSocket connection.
type WSHandler struct {
	problems app.ProblemSource
	history  *app.History
	defaults domain.SessionConfig
	opts     []app.ControllerOption
	upgrader websocket.Upgrader
}

func NewWSHandler(problems app.ProblemSource, history *app.History, defaults domain.SessionConfig, opts ...app.ControllerOption) *WSHandler {
	return &WSHandler{
		problems: problems,
		history:  history,
		defaults: defaults,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type stopPayload struct {
	Reason string `json:"reason"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and relays drill events to a controller.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	// drop the server's request deadlines; a drill outlives them
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	ctrl := app.NewController(h.problems, h.history, h.opts...)
	updates, cancel := ctrl.Subscribe()
	defer cancel()
	// an abandoned run is still worth a record
	defer ctrl.Stop(context.Background(), domain.ReasonDisconnect)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		var reported *domain.SessionRecord
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				msgs := []outboundMessage[any]{{Type: "state", Payload: snap}}
				if snap.LastRecord != nil && snap.LastRecord != reported {
					reported = snap.LastRecord
					msgs = append(msgs, outboundMessage[any]{Type: "finished", Payload: *snap.LastRecord})
				}
				for _, msg := range msgs {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					case <-writerDone:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			cfg := h.defaults
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &cfg); err != nil {
					reply(send, writerDone, "invalid start payload")
					continue
				}
			}
			ctrl.Start(ctx, cfg)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(send, writerDone, "invalid answer payload")
				continue
			}
			ctrl.SubmitAnswer(ctx, payload.Answer)
		case "advance":
			ctrl.Advance(ctx)
		case "stop":
			var payload stopPayload
			if len(inbound.Payload) > 0 {
				_ = json.Unmarshal(inbound.Payload, &payload)
			}
			ctrl.Stop(ctx, domain.Reason(payload.Reason))
		default:
			reply(send, writerDone, "unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// reply queues an error message unless the writer has already gone away.
func reply(send chan<- outboundMessage[any], writerDone <-chan struct{}, message string) {
	select {
	case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}:
	case <-writerDone:
	}
}
