package redefine_template

import (
	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"
)

// RedefineTemplateRequest HTTP request model
// Передается либо grid, либо intervals (в зоне timezone, по умолчанию UTC)
type RedefineTemplateRequest struct {
	FromWeek  string                 `json:"fromWeek"` // "2025-03-03", любой день недели
	Timezone  string                 `json:"timezone,omitempty"`
	Intervals []handlers.IntervalDTO `json:"intervals,omitempty"`
	Grid      weekly.Grid            `json:"grid,omitempty"`
}
