package types

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

// ChatResponse is the reply payload at the service boundary.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LeadRequest is the lead capture payload.
type LeadRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

// LeadResponse acknowledges a captured lead.
type LeadResponse struct {
	ID string `json:"id"`
}
