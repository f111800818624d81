package services

// ErrorKind classifies a failed operation so the HTTP layer can pick a
// status code without parsing message strings.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
)

// ServiceError is the error variant of every service result. The Message
// is user-facing and part of the API contract; clients pattern-match on it.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func ValidationError(msg string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: msg}
}

func NotFoundError(msg string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: msg}
}

func ForbiddenError(msg string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Message: msg}
}

func UnauthorizedError(msg string) *ServiceError {
	return &ServiceError{Kind: KindUnauthorized, Message: msg}
}

func ConflictError(msg string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: msg}
}
