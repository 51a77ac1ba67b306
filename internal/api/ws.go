package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

const (
	wsReadLimit = 64 << 10
	wsWriteWait = 10 * time.Second
)

// WSRequest asks for one student's recommendations.
type WSRequest struct {
	StudentID string `json:"student_id"`
	Mode      string `json:"mode,omitempty"`
}

// WSFrame answers a WSRequest. Type is "result" or "error".
type WSFrame struct {
	Type      string            `json:"type"`
	StudentID string            `json:"student_id,omitempty"`
	Result    *recommend.Result `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.log(r).Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(wsReadLimit)

	log := s.log(r).With("conn_id", uuid.NewString())
	log.Info("websocket connected")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Info("websocket closed")
			default:
				if !errors.Is(err, context.Canceled) {
					log.Warn("websocket read failed", "error", err)
				}
			}
			return
		}

		frame := s.answer(ctx, data)
		out, err := json.Marshal(frame)
		if err != nil {
			log.Error("encoding websocket frame", "error", err)
			conn.Close(websocket.StatusInternalError, "encoding failed")
			return
		}

		wctx, cancel := context.WithTimeout(ctx, wsWriteWait)
		err = conn.Write(wctx, websocket.MessageText, out)
		cancel()
		if err != nil {
			log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) answer(ctx context.Context, data []byte) WSFrame {
	var req WSRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return WSFrame{Type: "error", Error: "invalid request: " + err.Error()}
	}
	if req.StudentID == "" {
		return WSFrame{Type: "error", Error: "student_id is required"}
	}

	mode := s.defaultMode
	if req.Mode != "" {
		m, err := recommend.ParseMode(req.Mode)
		if err != nil {
			return WSFrame{Type: "error", StudentID: req.StudentID, Error: err.Error()}
		}
		mode = m
	}

	res, err := s.svc.ForStudent(ctx, req.StudentID, mode)
	if err != nil {
		return WSFrame{Type: "error", StudentID: req.StudentID, Error: err.Error()}
	}
	return WSFrame{Type: "result", StudentID: req.StudentID, Result: &res}
}
