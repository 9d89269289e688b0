package get_available_dates

import "time"

// Request модель запроса на получение дат со свободными стартами
type Request struct {
	Year           int
	Month          int
	SessionType    string
	ClientClass    string // пусто = individual
	MaxAdvanceDays *int   // может только сузить горизонт класса
	Accompanied    bool
	IsAdmin        bool
}

// Response модель ответа
type Response struct {
	Year           int
	Month          int
	MaxAdvanceDays int
	Dates          []time.Time
}
