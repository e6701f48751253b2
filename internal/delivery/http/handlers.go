package http

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/ilindan-dev/slot-watcher/internal/scheduler"
	"github.com/rs/zerolog"
	"net/http"
)

// SchedulerState is the part of the scheduler the status API reads.
type SchedulerState interface {
	State() scheduler.State
	Cycles() int64
}

type Handlers struct {
	status    repo.StatusStore
	scheduler SchedulerState
	logger    zerolog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(status repo.StatusStore, sched *scheduler.Scheduler, logger *zerolog.Logger) *Handlers {
	return newHandlers(status, sched, logger)
}

func newHandlers(status repo.StatusStore, sched SchedulerState, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		status:    status,
		scheduler: sched,
		logger:    logger.With().Str("layer", "http_handler").Logger(),
	}
}

// RegisterRoutes sets up the routing for the status API.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/status", h.GetStatus)
	}
}

// GetStatus returns the scheduler state and the latest cycle report.
func (h *Handlers) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		State:  string(h.scheduler.State()),
		Cycles: h.scheduler.Cycles(),
	}

	report, err := h.status.Latest(c.Request.Context())
	switch {
	case err == nil:
		resp.Last = toCycleResponse(report)
	case errors.Is(err, repo.ErrNotFound):
		// no cycle has finished yet
	default:
		h.logger.Error().Err(err).Msg("failed to read latest cycle report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read status"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// toCycleResponse is a helper function to map the domain model to the DTO.
func toCycleResponse(r *model.CycleReport) *CycleResponse {
	resp := &CycleResponse{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Stores:      make(map[string]int, len(r.Stores)),
		Available:   r.Available,
		Notified:    r.Notified,
		NotifyError: r.NotifyErr,
	}
	for code, n := range r.Stores {
		resp.Stores[string(code)] = n
	}
	if len(r.Failed) > 0 {
		resp.Failed = make(map[string]string, len(r.Failed))
		for code, reason := range r.Failed {
			resp.Failed[string(code)] = reason
		}
	}
	return resp
}
