package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/api_gateway/middleware"
	"github.com/wallet-ledger/internal/api_gateway/service"
	"github.com/wallet-ledger/internal/domain/shared"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create runs the ledger engine and answers 201 with the outcome, including
// outcomes that failed for insufficient funds.
func (h *TransactionHandler) Create(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	outcome, err := h.transactionService.ProcessTransaction(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondCreated(c, mapOutcome(outcome))
}

// CreateAsync queues the request for the transaction processor.
func (h *TransactionHandler) CreateAsync(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	if err := h.transactionService.SubmitTransaction(c.Request.Context(), req); err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondAccepted(c, gin.H{
		"transaction_id": req.TransactionID.String(),
		"status":         "PENDING",
	})
}

func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}
	tx, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondOK(c, mapTransaction(tx))
}

func (h *TransactionHandler) List(c *gin.Context) {
	var p PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}
	txs, total, err := h.transactionService.ListTransactions(c.Request.Context(), p.Limit(), p.Offset())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, mapTransaction(tx))
	}
	RespondWithPaginatedData(c, http.StatusOK, out, p, total)
}

// GetByAccountID lists the account's transaction log oldest first.
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var p PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}
	logs, total, err := h.transactionService.ListAccountLogs(c.Request.Context(), id, p.Limit(), p.Offset())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, mapLogs(logs), p, total)
}

func (h *TransactionHandler) ListLogs(c *gin.Context) {
	var p PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}
	logs, total, err := h.transactionService.ListLogs(c.Request.Context(), p.Limit(), p.Offset())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, mapLogs(logs), p, total)
}

func (h *TransactionHandler) bindRequest(c *gin.Context) (*shared.TransactionRequest, bool) {
	var body CreateTransactionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return nil, false
	}

	req := &shared.TransactionRequest{
		TransactionID:  uuid.New(),
		AccountID:      uuid.MustParse(body.AccountID),
		Type:           shared.TransactionType(body.Type),
		Amount:         *body.Amount,
		Currency:       body.Currency,
		IdempotencyKey: body.IdempotencyKey,
		CorrelationID:  middleware.CorrelationIDFromContext(c.Request.Context()),
		Timestamp:      time.Now().UTC(),
	}
	if body.TransactionID != "" {
		req.TransactionID = uuid.MustParse(body.TransactionID)
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	}
	return req, true
}
