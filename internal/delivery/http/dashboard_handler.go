package http

import (
	"log"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"financeagent/internal/delivery/http/dto"
	"financeagent/internal/domain"
	"financeagent/internal/service"
)

// DashboardHandler serves read-only aggregated views
type DashboardHandler struct {
	userRepo domain.UserRepository
	advisor  *service.AdvisorService
	ledger   *service.LedgerService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(userRepo domain.UserRepository, advisor *service.AdvisorService, ledger *service.LedgerService) *DashboardHandler {
	return &DashboardHandler{
		userRepo: userRepo,
		advisor:  advisor,
		ledger:   ledger,
	}
}

// ListUsers returns all registered users
// GET /users
func (h *DashboardHandler) ListUsers(c echo.Context) error {
	users, err := h.userRepo.List(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list users", err)
	}

	out := make([]dto.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserOutput{
			ID:        u.ID.String(),
			Name:      u.Name,
			CreatedAt: u.CreatedAt,
		})
	}
	return SuccessResponse(c, out)
}

// Dashboard returns the aggregated view for one user
// GET /dashboard/:user_id
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return BadRequestResponse(c, "user_id must be a valid UUID")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load user", err)
	}
	if user == nil {
		return NotFoundResponse(c, "User not found")
	}

	snap, err := h.advisor.CachedStatus(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to compute financial status", err)
	}

	goals, err := h.ledger.ListGoals(ctx, userID, true)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load goals", err)
	}

	alerts, err := h.ledger.SpendingAlerts(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to compute spending alerts", err)
	}

	txns, err := h.ledger.ListTransactions(ctx, userID, 10)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list transactions", err)
	}
	recent := make([]dto.TransactionOutput, 0, len(txns))
	for _, t := range txns {
		recent = append(recent, dto.NewTransactionOutput(t))
	}

	// The allocation is advisory display data; its failure should not
	// take the whole dashboard down.
	alloc, err := h.advisor.RecommendAllocation(ctx, userID)
	if err != nil {
		log.Printf("[WARN] allocation recommendation failed for %s: %v", userID, err)
		alloc = nil
	}

	return SuccessResponse(c, dto.DashboardOutput{
		User: dto.UserOutput{
			ID:        user.ID.String(),
			Name:      user.Name,
			CreatedAt: user.CreatedAt,
		},
		Snapshot:           snap,
		Goals:              goals,
		Alerts:             alerts,
		RecentTransactions: recent,
		Allocation:         alloc,
	})
}

// Transactions returns recent ledger entries
// GET /transactions/:user_id
func (h *DashboardHandler) Transactions(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return BadRequestResponse(c, "user_id must be a valid UUID")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	txns, err := h.ledger.ListTransactions(c.Request().Context(), userID, limit)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to list transactions", err)
	}

	out := make([]dto.TransactionOutput, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.NewTransactionOutput(t))
	}
	return SuccessResponse(c, out)
}

// ExpenseCategories returns spending grouped by category
// GET /expenses/categories/:user_id
func (h *DashboardHandler) ExpenseCategories(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return BadRequestResponse(c, "user_id must be a valid UUID")
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))
	cats, err := h.ledger.ExpenseByCategory(c.Request().Context(), userID, days)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to aggregate expenses", err)
	}

	return SuccessResponse(c, cats)
}
