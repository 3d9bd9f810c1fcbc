package find_slot

import "time"

// MaxFilterPractitioners ограничение на размер списка в FilterBookable
const MaxFilterPractitioners = 100

// Slot свободный для записи слот
type Slot struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// BookableResult ответ на вопрос "можно ли записаться на момент at"
type BookableResult struct {
	At       time.Time
	Bookable bool
	Reason   string // текст причины, если нельзя
}
