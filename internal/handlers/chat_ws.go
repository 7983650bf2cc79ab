package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"talentscout/interview/internal/models"
)

const chatReadLimit = 64 << 10

// The chat route carries no credentials, the interview id is the only
// capability, so any origin may connect just as it may POST messages.
var chatUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ChatWSHandler runs an interview over a websocket. Each client frame is a
// MessageRequest; the server answers with a ChatFrame. The transcript so far
// is sent as a status frame on connect, and the socket is closed once the
// interview completes.
func (h *InterviewHandler) ChatWSHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status, err := h.service.Status(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("interview_id", id))
		return
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("interview_id", id), zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(chatReadLimit)

	// the socket outlives the request timeout
	ctx := context.WithoutCancel(r.Context())

	if err := conn.WriteJSON(models.ChatFrame{Type: models.FrameStatus, Data: status}); err != nil {
		return
	}
	if status.Completed {
		closeChat(conn, "interview completed")
		return
	}

	for {
		var req models.MessageRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read failed", zap.String("interview_id", id), zap.Error(err))
			}
			return
		}
		if err := req.Validate(); err != nil {
			if conn.WriteJSON(models.ChatFrame{Type: models.FrameError, Data: err}) != nil {
				return
			}
			continue
		}

		resp, err := h.service.Message(ctx, id, req.Content, req.RequestID)
		if err != nil {
			_, body := errorBody(h.logger, err, zap.String("interview_id", id), zap.String("request_id", req.RequestID))
			if conn.WriteJSON(models.ChatFrame{Type: models.FrameError, Data: body}) != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(models.ChatFrame{Type: models.FrameMessage, Data: resp}); err != nil {
			return
		}
		if resp.CurrentStep == models.PhaseCompleted {
			closeChat(conn, "interview completed")
			return
		}
	}
}

func closeChat(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
}
