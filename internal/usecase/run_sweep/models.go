package run_sweep

// Result итог одного прохода
type Result struct {
	Scanned     int // просмотрено активных записей
	Transitions int // выполнено переходов
	Skipped     int // статус уже изменился параллельно
	Failed      int // переход не удался, запись будет повторена в следующем проходе
}
