package httpadapter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type chatProxyRequest struct {
	Messages    []domain.ChatMessage `json:"messages"`
	Model       string               `json:"model,omitempty"`
	Temperature float64              `json:"temperature,omitempty"`
}

type chatProxyResponse struct {
	ID      string             `json:"id"`
	Message domain.ChatMessage `json:"message"`
	Usage   domain.ChatUsage   `json:"usage"`
}

// chatProxy forwards a chat exchange to the model provider. Rate limiting
// surfaces as 429 so the dashboard can tell "slow down" apart from a
// provider outage.
func (rt *Router) chatProxy(w http.ResponseWriter, r *http.Request) {
	var req chatProxyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages is required"})
		return
	}
	for i, m := range req.Messages {
		if strings.TrimSpace(m.Role) == "" || strings.TrimSpace(m.Content) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "message " + strconv.Itoa(i) + " must have role and content",
			})
			return
		}
	}

	resp, err := rt.chat.Complete(r.Context(), domain.ChatRequest{
		Messages:    req.Messages,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		model := req.Model
		if model == "" {
			model = "default"
		}
		rt.metrics.RecordTokenUsage(rt.opts.Service, model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	writeJSON(w, http.StatusOK, chatProxyResponse{
		ID:      resp.ID,
		Message: resp.Message,
		Usage:   resp.Usage,
	})
}
