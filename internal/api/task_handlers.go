package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/presenter"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/tasks"
)

type TriggerTaskResponse struct {
	Status string `json:"status"`
}

// handleTasks lists the background tasks and their last results.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.taskManager.ListStatus(), http.StatusOK)
}

// handleTaskTrigger kicks off a task run out of schedule.
func (s *Server) handleTaskTrigger(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.taskManager.Trigger(name); err != nil {
		var notFound tasks.TaskNotFoundError
		if errors.As(err, &notFound) {
			presenter.Error(w, r, "task not found", http.StatusNotFound)
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("task", name).Msg("failed to trigger task")
		presenter.Error(w, r, "failed to trigger task", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, TriggerTaskResponse{Status: "triggered"}, http.StatusOK)
}
