package usecase

import "errors"

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeFollowupNotFound = "FOLLOWUP_NOT_FOUND"
	CodeSubmitInFlight   = "SUBMIT_IN_FLIGHT"
	CodeInvalidStage     = "INVALID_STAGE"
	CodePersistence      = "PERSISTENCE_ERROR"
)

// DomainError é erro de entrada do usuário: o formulário continua editável
// e nada chega à persistência.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var d *DomainError
	return errors.As(err, &d)
}

// TechnicalError é falha de operação (rede, banco). Não há retentativa automática.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var t *TechnicalError
	return errors.As(err, &t)
}

func ErrorCode(err error) string {
	var d *DomainError
	if errors.As(err, &d) {
		return d.Code
	}
	var t *TechnicalError
	if errors.As(err, &t) {
		return t.Code
	}
	return ""
}

func validationError(fields []ValidationError) *DomainError {
	msg := "validation failed: "
	for i, f := range fields {
		if i > 0 {
			msg += ", "
		}
		msg += f.Field + " (" + f.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg, Fields: fields}
}

func persistenceError(op string, err error) *TechnicalError {
	return &TechnicalError{
		Code:    CodePersistence,
		Message: op + ": " + err.Error(),
		Err:     err,
	}
}
