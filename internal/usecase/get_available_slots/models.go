package get_available_slots

import "time"

// Request модель запроса на получение свободных стартов
type Request struct {
	Date        string // YYYY-MM-DD в часовом поясе зала
	SessionType string
	Accompanied bool
}

// Response модель ответа со списком свободных стартов
type Response struct {
	Date           time.Time
	SessionType    string
	Accompanied    bool
	DisplayMinutes int
	BlockedMinutes int
	Slots          []time.Time // хронологический порядок
}
