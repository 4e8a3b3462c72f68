package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/response"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/sse"
)

type StreamTokenRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type StreamHandler interface {
	IssueToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	jwtService jwt.Service
	memberRepo workspace.MemberRepository
	hub        *sse.Hub
	keepalive  time.Duration
}

func NewStreamHandler(jwtService jwt.Service, memberRepo workspace.MemberRepository, hub *sse.Hub, keepalive time.Duration) StreamHandler {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &streamHandlerImpl{
		jwtService: jwtService,
		memberRepo: memberRepo,
		hub:        hub,
		keepalive:  keepalive,
	}
}

// IssueToken mints a short-lived token for one workspace stream. Browsers
// cannot set headers on EventSource, so the stream authenticates by query.
func (h *streamHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req StreamTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WorkspaceID == "" {
		response.ValidationError(w, map[string]string{"workspaceId": "workspaceId is required"})
		return
	}

	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if _, err := h.memberRepo.GetMember(r.Context(), req.WorkspaceID, userID); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID, req.WorkspaceID)
	if err != nil {
		slog.Error("failed to generate sse token", "user_id", userID, "error", err)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles SSE connection for a workspace's attendance events
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if ws := r.URL.Query().Get("workspaceId"); ws != "" && ws != claims.WorkspaceID {
		response.Forbidden(w, "Token was issued for another workspace")
		return
	}

	// Membership is re-checked here since the token may outlive a role change.
	member, err := h.memberRepo.GetMember(r.Context(), claims.WorkspaceID, claims.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(claims.WorkspaceID, sse.Viewer{
		UserID:  member.UserID,
		SeesAll: member.IsAdmin(),
	})
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"workspaceId\":%q}\n\n", claims.WorkspaceID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Warn("failed to encode stream event", "type", event.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
