package dto

// TopUpRequest is the body of POST /giveaways/:id/topup. Email falls back to the forwarded
// user email.
type TopUpRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}
