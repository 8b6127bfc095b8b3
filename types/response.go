package types

// ErrorResponse documents the JSON body of every failed request.
type ErrorResponse struct {
	Type    string                 `json:"type" example:"VALIDATION_ERROR"`
	Error   string                 `json:"error" example:"Missing required fields"`
	Details map[string]interface{} `json:"details,omitempty"`
	Message string                 `json:"message,omitempty"`
}
