package constants

// Context keys for validated requests
const (
	// Quote context keys
	ContextKeyQuote = "quote"
)
