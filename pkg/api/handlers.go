package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/packlog/pkg/dynamic"
	"github.com/ssargent/packlog/pkg/schema"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MessageTypeInfo describes one message type from the log schema
type MessageTypeInfo struct {
	Name       string `json:"name"`
	UID        uint32 `json:"uid"`
	PackedSize int    `json:"packed_size"`
	Fields     int    `json:"fields"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleSchema lists every message type declared by the log header.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	var out []MessageTypeInfo
	for _, m := range s.reader.Builder().Messages() {
		out = append(out, MessageTypeInfo{
			Name:       m.Name(),
			UID:        m.UID(),
			PackedSize: m.PackedSize(),
			Fields:     len(m.Fields()),
		})
	}
	sendSuccess(w, out)
}

// handleMessages returns the latest record of every message type.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	s.mu.Lock()
	trees, err := s.reader.LoadAll()
	s.mu.Unlock()
	if err != nil {
		s.metrics.RecordLoad(false, time.Since(start), 0)
		sendError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.RecordLoad(true, time.Since(start), len(trees))

	out := make(map[string]any, len(trees))
	for name, tree := range trees {
		out[name] = dynamic.Native(tree)
	}
	sendSuccess(w, out)
}

// handleMessage returns the latest record of one message type.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	msgs := s.reader.MessageTypes()
	desc, ok := msgs[name]
	if !ok {
		sendErrorString(w, http.StatusNotFound, "unknown message type: "+name)
		return
	}

	start := time.Now()

	tree, err := dynamic.NewStruct(desc)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err)
		return
	}

	found := false
	s.mu.Lock()
	err = s.reader.Load([]*schema.TypeDescriptor{desc}, func(d *schema.TypeDescriptor, rec []byte) error {
		found = true
		return tree.Unpack(rec)
	})
	s.mu.Unlock()
	if err != nil {
		s.metrics.RecordLoad(false, time.Since(start), 0)
		sendError(w, http.StatusInternalServerError, err)
		return
	}
	s.metrics.RecordLoad(true, time.Since(start), 1)

	if !found {
		sendErrorString(w, http.StatusNotFound, "no records of type "+name+" in log")
		return
	}
	sendSuccess(w, dynamic.Native(tree))
}

func sendSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, code int, err error) {
	sendErrorString(w, code, err.Error())
}

func sendErrorString(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: msg})
}
