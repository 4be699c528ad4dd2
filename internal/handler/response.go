package handler

type errorPayload struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

func NewValidationErrorResponse(fields ...FieldError) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    "validation_error",
			Message: "invalid request",
			Fields:  fields,
		},
	}
}
