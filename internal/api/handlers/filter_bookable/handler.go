package filter_bookable

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/find_slot"
)

const (
	msgInvalidIDs = "некорректный параметр ids, ожидается список ID через запятую"
	msgInvalidAt  = "некорректный параметр at, ожидается RFC3339"
	msgTooManyIDs = "слишком много специалистов в запросе"
)

type Handler struct {
	finder SlotFinder
	logger Logger
}

func NewHandler(finder SlotFinder, logger Logger) *Handler {
	return &Handler{
		finder: finder,
		logger: logger,
	}
}

// Handle GET /api/v1/practitioners/bookable?at=RFC3339&ids=1,2,3
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil || len(ids) == 0 {
		h.logger.Warn("GET /practitioners/bookable - Invalid ids: %v", err)
		handlers.RespondBadRequest(w, msgInvalidIDs)
		return
	}
	at, err := handlers.QueryTime(r, "at", time.Time{})
	if err != nil || at.IsZero() {
		h.logger.Warn("GET /practitioners/bookable - Invalid at: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAt)
		return
	}

	bookable, err := h.finder.FilterBookable(r.Context(), ids, at)
	if err != nil {
		switch {
		case errors.Is(err, find_slot.ErrInvalidInput):
			h.logger.Warn("GET /practitioners/bookable - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgTooManyIDs)
		default:
			h.logger.Error("GET /practitioners/bookable - Failed to filter practitioners: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, BookablePractitionersResponse{At: at, PractitionerIDs: bookable})
}
