package http

import (
	"encoding/json"
	"log"
	"net/http"

	"addition-drill/internal/app"
	"addition-drill/internal/export"
)

// HistoryHandler serves stored session records.
type HistoryHandler struct {
	history *app.History
}

func NewHistoryHandler(history *app.History) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ServeJSON writes the history, newest first.
func (h *HistoryHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	records := h.history.Load(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		log.Printf("encode history: %v", err)
	}
}

// ServeCSV writes the history as a CSV download.
func (h *HistoryHandler) ServeCSV(w http.ResponseWriter, r *http.Request) {
	records := h.history.Load(r.Context())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=history.csv")
	if err := export.WriteCSV(w, records); err != nil {
		log.Printf("export history: %v", err)
	}
}

// Routes wires every drill endpoint onto mux.
func Routes(mux *http.ServeMux, ws *WSHandler, history *HistoryHandler) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("/history", history.ServeJSON)
	mux.HandleFunc("/history.csv", history.ServeCSV)
}
