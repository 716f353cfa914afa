package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/api_gateway/service"
	"github.com/wallet-ledger/internal/domain/account"
)

type AccountHandler struct {
	accountService service.AccountService
	reportService  service.ReportService
	logger         *slog.Logger
}

func NewAccountHandler(logger *slog.Logger, accountService service.AccountService, reportService service.ReportService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		reportService:  reportService,
		logger:         logger,
	}
}

// Create opens an account and its wallet.
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		RespondBadRequest(c, "date_of_birth must be YYYY-MM-DD")
		return
	}

	view, err := h.accountService.CreateAccount(c.Request.Context(), service.NewAccountInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		DateOfBirth:       dob,
		PreferredCurrency: req.PreferredCurrency,
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondCreated(c, mapAccountView(view))
}

func (h *AccountHandler) List(c *gin.Context) {
	var p PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), p.Limit(), p.Offset())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	out := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, mapAccount(acc, nil))
	}
	RespondWithPaginatedData(c, http.StatusOK, out, p, total)
}

func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	view, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondOK(c, mapAccountView(view))
}

// Update applies a partial update. Changing preferred_currency also moves the wallet.
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		RespondBadRequest(c, "date_of_birth must be YYYY-MM-DD")
		return
	}

	view, err := h.accountService.UpdateAccount(c.Request.Context(), id, account.Changes{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		DateOfBirth:       dob,
		PreferredCurrency: req.PreferredCurrency,
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondOK(c, mapAccountView(view))
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteAccount(c.Request.Context(), id); err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}

func (h *AccountHandler) Balance(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	view, err := h.accountService.GetBalance(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondOK(c, mapBalance(view))
}

// Rejections lists requests for the account that were refused before
// reaching the ledger, newest first.
func (h *AccountHandler) Rejections(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var p PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	rejections, total, err := h.reportService.Rejections(c.Request.Context(), id, p.Limit(), p.Offset())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, rejections, p, total)
}

func accountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
