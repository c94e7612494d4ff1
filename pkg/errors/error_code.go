package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeParse                ErrorCode = 102
	ErrCodeValidation           ErrorCode = 103
	ErrCodeUnknownColumn        ErrorCode = 104
	ErrCodeInvalidGranularity   ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataSourceUnavailable ErrorCode = 200
	ErrCodeQueryFailed           ErrorCode = 201
	ErrCodeNoDataFound           ErrorCode = 202

	// Statistics errors (300-399)
	ErrCodeEmptyColumn ErrorCode = 300

	// Decomposition errors (400-499)
	ErrCodeInsufficientPeriods ErrorCode = 400

	// Forecast errors (500-599)
	ErrCodeFitFailed      ErrorCode = 500
	ErrCodeForecastFailed ErrorCode = 501

	// Evaluation errors (600-699)
	ErrCodeLengthMismatch ErrorCode = 600
)
