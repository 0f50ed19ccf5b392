package client

import (
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strconv"
)

const (
	MsgNetwork      = "Error de conexión. Verifica tu conexión a internet."
	MsgServer       = "Error del servidor"
	MsgNotFound     = "Recurso no encontrado"
	MsgInvalidData  = "Datos inválidos"
	MsgInternal     = "Error interno del servidor"
	MsgUnknownError = "Error desconocido"
)

// APIError is the one error shape every client call fails with.
type APIError struct {
	Message string
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Errors lists validation messages from a 422 response.
	Errors []string
	// Data is the raw response body, when there was one.
	Data json.RawMessage
	// Err is the underlying failure for transport and local errors.
	Err error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return e.Message + " (HTTP " + strconv.Itoa(e.Status) + ")"
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the request never got a response.
func (e *APIError) IsNetwork() bool {
	return e.Status == 0 && e.Message == MsgNetwork
}

// IsNotFound reports a 404 response.
func (e *APIError) IsNotFound() bool {
	return e.Status == 404
}

// IsValidation reports a 422 response.
func (e *APIError) IsValidation() bool {
	return e.Status == 422
}

type errorBody struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
}

// fromResponse normalizes a non-2xx response.
func fromResponse(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if len(body) > 0 {
		apiErr.Data = json.RawMessage(body)
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	apiErr.Errors = eb.Errors

	switch {
	case eb.Message != "":
		apiErr.Message = eb.Message
	case eb.Error != "":
		apiErr.Message = eb.Error
	case status == 404:
		apiErr.Message = MsgNotFound
	case status == 422:
		apiErr.Message = MsgInvalidData
	case status >= 500:
		apiErr.Message = MsgInternal
	default:
		apiErr.Message = MsgServer
	}
	return apiErr
}

// fromError normalizes a failure that produced no response.
func fromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &APIError{Message: MsgNetwork, Err: err}
	}

	msg := err.Error()
	if msg == "" {
		msg = MsgUnknownError
	}
	return &APIError{Message: msg, Err: err}
}
