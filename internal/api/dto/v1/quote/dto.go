package quote

// ContactDetails carries the requester's contact information.
type ContactDetails struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Address string `json:"address" binding:"required,min=3,max=500"`
}

// QuoteRequest represents a quote form submission.
//
// Honeypot intentionally has no binding tag: legitimate clients always send
// it empty and the pipeline rejects any submission where it is set. TTF is
// the number of milliseconds between form render and submit.
type QuoteRequest struct {
	PlanName       string         `json:"planName" binding:"required,max=100"`
	PlanPrice      float64        `json:"planPrice" binding:"required,gt=0"`
	Quantity       int            `json:"quantity" binding:"required,min=1,max=1000"`
	TotalPrice     float64        `json:"totalPrice" binding:"required,gt=0"`
	FormData       ContactDetails `json:"formData" binding:"required"`
	TurnstileToken string         `json:"turnstileToken" binding:"required"`
	Honeypot       string         `json:"honeypot"`
	TTF            float64        `json:"ttf"`
}
