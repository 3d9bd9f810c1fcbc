package set_week_behavior

// SetWeekBehaviorRequest HTTP request model
type SetWeekBehaviorRequest struct {
	Behavior string `json:"behavior"` // TEMPLATE, CUSTOM, UNAVAILABLE
}
