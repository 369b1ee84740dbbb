package httpadapter

import (
	"context"
	"net/http"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type createTasksRequest struct {
	DocumentID string          `json:"document_id,omitempty"`
	Maker      string          `json:"maker"`
	Actions    []domain.Action `json:"actions"`
}

type reviewRequest struct {
	Checker string `json:"checker"`
	Note    string `json:"note,omitempty"`
}

func (rt *Router) createTasks(w http.ResponseWriter, r *http.Request) {
	var req createTasksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	tasks, err := rt.tasks.CreateFromActions(r.Context(), req.DocumentID, req.Maker, req.Actions)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tasks)
}

func (rt *Router) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := rt.tasks.List(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (rt *Router) submitTask(w http.ResponseWriter, r *http.Request) {
	task, err := rt.tasks.Submit(r.Context(), r.PathValue("task_id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (rt *Router) approveTask(w http.ResponseWriter, r *http.Request) {
	rt.reviewTask(w, r, rt.tasks.Approve)
}

func (rt *Router) rejectTask(w http.ResponseWriter, r *http.Request) {
	rt.reviewTask(w, r, rt.tasks.Reject)
}

type reviewFunc func(ctx context.Context, taskID, checker, note string) (*domain.ComplianceTask, error)

func (rt *Router) reviewTask(w http.ResponseWriter, r *http.Request, review reviewFunc) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	task, err := review(r.Context(), r.PathValue("task_id"), req.Checker, req.Note)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
