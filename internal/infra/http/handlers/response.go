package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/xavierca1/imob-crm/internal/usecase"
)

// maxBodyBytes cobre com folga a maior entrada (nota de 500 caracteres).
const maxBodyBytes = 8 << 10

type ErrorResponse struct {
	Error  string                    `json:"error"`
	Code   string                    `json:"code,omitempty"`
	Fields []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError traduz os erros dos casos de uso em status HTTP.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		writeJSON(w, domainStatus(domainErr.Code), ErrorResponse{
			Error:  domainErr.Message,
			Code:   domainErr.Code,
			Fields: domainErr.Fields,
		})
		return
	}

	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: techErr.Message, Code: techErr.Code})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "erro interno"})
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeLeadNotFound, usecase.CodeFollowupNotFound:
		return http.StatusNotFound
	case usecase.CodeSubmitInFlight:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON lê no máximo maxBodyBytes do corpo. Em caso de erro já escreve a
// resposta (413 ou 400) e devolve false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("corpo excede %d bytes", maxBodyBytes),
				Code:  usecase.CodeValidation,
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "JSON inválido: " + err.Error(), Code: usecase.CodeValidation})
		return false
	}
	return true
}
