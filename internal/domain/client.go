package domain

import "time"

// Client аккаунт клиента (владелец бронирований и пакетов)
type Client struct {
	ID        int64
	Email     string
	Name      string
	Class     ClientClass
	Active    bool
	CreatedAt time.Time
}

// Person участник сеанса, привязанный к аккаунту клиента
type Person struct {
	ID        int64
	ClientID  int64
	Name      string
	CreatedAt time.Time
}
