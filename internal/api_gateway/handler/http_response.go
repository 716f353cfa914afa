package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/api_gateway/middleware"
	"github.com/wallet-ledger/internal/api_gateway/service"
	"github.com/wallet-ledger/internal/domain/account"
	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/domain/transaction"
	"github.com/wallet-ledger/internal/domain/wallet"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

func NewResponse(data interface{}) *Response {
	return &Response{Data: data}
}

func NewErrorResponse(code, message string) *Response {
	return &Response{Error: &ErrorInfo{Code: code, Message: message}}
}

func NewPaginatedResponse(data interface{}, page, perPage, totalItems int) *Response {
	totalPages := totalItems / perPage
	if totalItems%perPage > 0 {
		totalPages++
	}
	return &Response{
		Data: data,
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	response := NewResponse(data)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respondWithErrorDetails(c, statusCode, code, message, nil)
}

func respondWithErrorDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	response := NewErrorResponse(code, message)
	response.Error.Details = details
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, p PaginationParams, totalItems int64) {
	response := NewPaginatedResponse(data, p.Page, p.PerPage, int(totalItems))
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

func RespondConflict(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusConflict, code, message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondServiceError maps domain errors to status codes. Anything it does
// not recognise is logged and reported as a 500.
func RespondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		invalidAccount account.ErrInvalidAccount
		accNotFound    account.ErrAccountNotFound
		duplicateEmail account.ErrDuplicateEmail
		conversion     shared.ErrConversionFailed
	)

	switch {
	case shared.IsValidationError(err), errors.Is(err, service.ErrInvalidTimeRange):
		RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &invalidAccount):
		respondWithErrorDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid account data", invalidAccount.Fields)
	case errors.As(err, &accNotFound), errors.Is(err, wallet.ErrWalletNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.Is(err, transaction.ErrTransactionNotFound{}):
		RespondNotFound(c, "Transaction not found")
	case errors.As(err, &duplicateEmail):
		RespondConflict(c, "DUPLICATE_EMAIL", "An account with this email already exists")
	case errors.Is(err, shared.ErrIdempotencyConflict{}):
		RespondConflict(c, "DUPLICATE_REQUEST", err.Error())
	case errors.Is(err, shared.ErrRetriesExhausted{}):
		RespondConflict(c, "CONCURRENT_MODIFICATION", "The wallet is busy, please retry")
	case errors.As(err, &conversion):
		logger.Warn("currency conversion failed", "from", conversion.From, "to", conversion.To, "error", err)
		RespondWithError(c, http.StatusServiceUnavailable, "CONVERSION_FAILED",
			"Could not convert "+conversion.From+" to "+conversion.To+", please retry later")
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		RespondInternalError(c)
	}
}
