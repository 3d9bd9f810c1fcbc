package add_template_interval

import "github.com/m04kA/SMC-SchedulingService/internal/api/handlers"

// AddIntervalRequest HTTP request model
type AddIntervalRequest struct {
	handlers.IntervalDTO
	Timezone string `json:"timezone,omitempty"`
}
