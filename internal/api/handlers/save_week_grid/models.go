package save_week_grid

import "github.com/m04kA/SMC-SchedulingService/internal/domain/weekly"

// SaveWeekGridRequest HTTP request model
type SaveWeekGridRequest struct {
	Grid weekly.Grid `json:"grid"`
}
