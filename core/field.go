package core

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldErrorer is implemented by errors that carry per-field details, such as
// validator.ValidationErrors. The envelope renders them under "details".
type FieldErrorer interface {
	FieldErrors() []FieldError
}
