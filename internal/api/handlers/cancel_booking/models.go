package cancel_booking

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Token string `json:"token"`
}
