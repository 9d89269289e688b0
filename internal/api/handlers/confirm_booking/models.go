package confirm_booking

// ConfirmBookingRequest HTTP request model
type ConfirmBookingRequest struct {
	Token string `json:"token"`
}
