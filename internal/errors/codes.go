package errors

import "net/http"

// Code represents an error code
type Code string

// Infrastructure error codes
const (
	CodeOK              Code = "OK"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAborted         Code = "ABORTED"
	CodeInternal        Code = "INTERNAL"
	CodeDataLoss        Code = "DATA_LOSS"
)

// Generation error codes
const (
	CodeConfiguration   Code = "CONFIGURATION_ERROR"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeAPI             Code = "API_ERROR"
	CodeTimeout         Code = "TIMEOUT"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeServerError     Code = "SERVER_ERROR"
	CodeRequestError    Code = "REQUEST_ERROR"
	CodeNetworkError    Code = "NETWORK_ERROR"
	CodeGenerationError Code = "GENERATION_ERROR"
	CodeClientError     Code = "CLIENT_ERROR"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// HTTPStatus returns the corresponding HTTP status code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidArgument, CodeValidation, CodeRequestError:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAborted:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeAPI, CodeServerError, CodeNetworkError, CodeGenerationError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
