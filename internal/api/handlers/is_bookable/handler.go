package is_bookable

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidPractitionerID = "некорректный ID специалиста"
	msgInvalidAt             = "некорректный параметр at, ожидается RFC3339"
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

// Handle GET /api/v1/practitioners/{practitionerId}/bookable?at=RFC3339
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := handlers.PathInt64(r, "practitionerId")
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/bookable - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}
	at, err := handlers.QueryTime(r, "at", time.Time{})
	if err != nil || at.IsZero() {
		h.logger.Warn("GET /practitioners/{id}/bookable - Invalid at: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAt)
		return
	}

	result, err := h.finder.IsBookable(r.Context(), practitionerID, at)
	if err != nil {
		h.logger.Error("GET /practitioners/{id}/bookable - Failed to check instant: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResult(result))
}
