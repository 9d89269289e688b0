package domain

// Значения по умолчанию для правил календаря
const (
	DefaultSlotGranularityMinutes = 30
	DefaultMinNoticeMinutes       = 60 // 1 hour
	DefaultIndividualAdvanceDays  = 30
	DefaultAssociationAdvanceDays = 90
	DefaultAdminAdvanceDays       = 365
	DefaultTimezone               = "Europe/Paris"
)

// Ограничения бизнес-валидации
const (
	MinSlotGranularityMinutes = 5
	MaxSlotGranularityMinutes = 240
	MaxAdvanceDays            = 730
	MaxMinNoticeMinutes       = 10080 // 1 week
	MaxNameLength             = 200
	MaxEmailLength            = 254
	MaxDiscountCodeLength     = 64
	MaxUserAgentLength        = 512
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// BlockingStatuses статусы, занимающие зал.
// Только они участвуют в проверке пересечений
var BlockingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// Audit actions
const (
	AuditActionCreate  = "booking.create"
	AuditActionConfirm = "booking.confirm"
	AuditActionCancel  = "booking.cancel"
	AuditActionStatus  = "booking.status"
)

// Actors
const (
	ActorClient = "client"
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

// События уведомлений
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventBookingNoShow    = "booking.no_show"
)

// EventForStatus событие уведомления для статуса, в который перешло бронирование
func EventForStatus(status BookingStatus) string {
	switch status {
	case StatusConfirmed:
		return EventBookingConfirmed
	case StatusCancelled:
		return EventBookingCancelled
	case StatusCompleted:
		return EventBookingCompleted
	case StatusNoShow:
		return EventBookingNoShow
	default:
		return EventBookingCreated
	}
}
