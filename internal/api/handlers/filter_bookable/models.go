package filter_bookable

import (
	"strconv"
	"strings"
	"time"
)

// BookablePractitionersResponse HTTP response model
type BookablePractitionersResponse struct {
	At              time.Time `json:"at"`
	PractitionerIDs []int64   `json:"practitionerIds"`
}

// parseIDs разбирает список ID через запятую
func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
