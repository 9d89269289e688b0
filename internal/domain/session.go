package domain

import "fmt"

// SessionType тип сеанса в зале
type SessionType string

const (
	SessionDiscovery SessionType = "discovery"
	SessionRegular   SessionType = "regular"
	SessionHalfDay   SessionType = "half_day" // групповой / приватизация
	SessionFullDay   SessionType = "full_day" // групповой / приватизация
)

// SessionTypes все известные типы сеансов
var SessionTypes = []SessionType{
	SessionDiscovery,
	SessionRegular,
	SessionHalfDay,
	SessionFullDay,
}

// IsValid возвращает true для известного типа сеанса
func (t SessionType) IsValid() bool {
	for _, known := range SessionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsGroup групповые типы доступны только ассоциациям и поддерживают сопровождение
func (t SessionType) IsGroup() bool {
	return t == SessionHalfDay || t == SessionFullDay
}

// ParseSessionType конвертирует строку в SessionType с валидацией
func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSessionType, s)
	}
	return t, nil
}

// ClientClass класс клиента: определяет прайс и горизонт бронирования
type ClientClass string

const (
	ClientIndividual  ClientClass = "individual"
	ClientAssociation ClientClass = "association"
)

// IsValid возвращает true для известного класса клиента
func (c ClientClass) IsValid() bool {
	return c == ClientIndividual || c == ClientAssociation
}

// ParseClientClass конвертирует строку в ClientClass с валидацией
func ParseClientClass(s string) (ClientClass, error) {
	c := ClientClass(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownClientClass, s)
	}
	return c, nil
}
