package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
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
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeExternalService    ErrorCode = "COMMON_011"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_012"
)

// Claim Parsing Error Codes
const (
	ErrCodeClaimEmpty        ErrorCode = "CLAIM_001"
	ErrCodeClaimTooLong      ErrorCode = "CLAIM_002"
	ErrCodeClaimParseFailed  ErrorCode = "CLAIM_003"
)

// Vector Index Error Codes
const (
	ErrCodeDimensionMismatch      ErrorCode = "VEC_001"
	ErrCodeRecordAlreadyExists    ErrorCode = "VEC_002"
	ErrCodeSimilaritySearchFailed ErrorCode = "VEC_003"
	ErrCodeEmptyEmbedding         ErrorCode = "VEC_004"
)

// Embedding Provider Error Codes
const (
	ErrCodeEmbeddingUnavailable ErrorCode = "EMB_001"
	ErrCodeEmbeddingMalformed   ErrorCode = "EMB_002"
	ErrCodeEmbeddingInput       ErrorCode = "EMB_003"
)

// LLM / Generation Error Codes
const (
	ErrCodeGenerationUnavailable ErrorCode = "LLM_001"
	ErrCodeJudgmentParseFailed   ErrorCode = "LLM_002"
	ErrCodePromptTooLong         ErrorCode = "LLM_003"
)

// Evaluation Pipeline Error Codes
const (
	ErrCodeEvaluationFailed     ErrorCode = "EVAL_001"
	ErrCodeEvaluationConfig     ErrorCode = "EVAL_002"
	ErrCodeStageDisabled        ErrorCode = "EVAL_003"
)

// Corpus / Dataset Error Codes
const (
	ErrCodeCorpusNotFound    ErrorCode = "CORPUS_001"
	ErrCodeCorpusParseError  ErrorCode = "CORPUS_002"
	ErrCodeCorpusLoadFailed  ErrorCode = "CORPUS_003"
)

// Aliases kept for call-site readability in generic layers.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeFeatureDisabled:    http.StatusForbidden,

	ErrCodeClaimEmpty:       http.StatusBadRequest,
	ErrCodeClaimTooLong:     http.StatusBadRequest,
	ErrCodeClaimParseFailed: http.StatusUnprocessableEntity,

	ErrCodeDimensionMismatch:      http.StatusBadRequest,
	ErrCodeRecordAlreadyExists:    http.StatusConflict,
	ErrCodeSimilaritySearchFailed: http.StatusInternalServerError,
	ErrCodeEmptyEmbedding:         http.StatusBadRequest,

	ErrCodeEmbeddingUnavailable: http.StatusServiceUnavailable,
	ErrCodeEmbeddingMalformed:   http.StatusBadGateway,
	ErrCodeEmbeddingInput:       http.StatusBadRequest,

	ErrCodeGenerationUnavailable: http.StatusServiceUnavailable,
	ErrCodeJudgmentParseFailed:   http.StatusBadGateway,
	ErrCodePromptTooLong:         http.StatusBadRequest,

	ErrCodeEvaluationFailed: http.StatusInternalServerError,
	ErrCodeEvaluationConfig: http.StatusInternalServerError,
	ErrCodeStageDisabled:    http.StatusForbidden,

	ErrCodeCorpusNotFound:   http.StatusNotFound,
	ErrCodeCorpusParseError: http.StatusUnprocessableEntity,
	ErrCodeCorpusLoadFailed: http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code associated with c.
// Unknown codes map to 500 so that forgotten registrations fail loudly in
// dashboards rather than silently returning 200.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := ErrorCodeHTTPStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
