package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are grouped by module prefix:
// COMMON for cross-cutting conditions, DET for the detection shell, CNT for
// content resolution, VAL for valuation persistence, and RPT for reporting.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
)

// Detection module error codes.
const (
	ErrCodeDetectionNotFound    ErrorCode = "DET_001"
	ErrCodeDetectionStoreFailed ErrorCode = "DET_002"
	ErrCodeSignatureInvalid     ErrorCode = "DET_003"
)

// Content module error codes.
const (
	ErrCodeContentResolveFailed ErrorCode = "CNT_001"
	ErrCodeLocatorInvalid       ErrorCode = "CNT_002"
)

// Valuation module error codes.
const (
	ErrCodeValuationStoreFailed ErrorCode = "VAL_001"
	ErrCodeRateTableInvalid     ErrorCode = "VAL_002"
)

// Reporting module error codes.
const (
	ErrCodeReportExportFailed ErrorCode = "RPT_001"
	ErrCodeReportWindowEmpty  ErrorCode = "RPT_002"
)

// CodeOK is the sentinel code returned by GetCode for a nil error.
const CodeOK = ErrorCode("OK")

// CodeUnknown is the sentinel for errors that carry no *AppError in the chain.
const CodeUnknown = ErrorCode("UNKNOWN")

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,

	ErrCodeDetectionNotFound:    http.StatusNotFound,
	ErrCodeDetectionStoreFailed: http.StatusInternalServerError,
	ErrCodeSignatureInvalid:     http.StatusBadRequest,

	ErrCodeContentResolveFailed: http.StatusBadGateway,
	ErrCodeLocatorInvalid:       http.StatusBadRequest,

	ErrCodeValuationStoreFailed: http.StatusInternalServerError,
	ErrCodeRateTableInvalid:     http.StatusInternalServerError,

	ErrCodeReportExportFailed: http.StatusInternalServerError,
	ErrCodeReportWindowEmpty:  http.StatusNotFound,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode, defaulting
// to 500 for unmapped codes.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}
