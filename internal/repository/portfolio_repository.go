package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"financeagent/internal/domain"
)

// PortfolioRepositoryImpl implements the PortfolioRepository interface
type PortfolioRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(db *pgxpool.Pool) domain.PortfolioRepository {
	return &PortfolioRepositoryImpl{db: db}
}

func (r *PortfolioRepositoryImpl) Add(ctx context.Context, holding *domain.PortfolioHolding) error {
	query := `
		INSERT INTO portfolio_holdings (
			id, user_id, asset_type, symbol, quantity,
			purchase_price, purchase_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		holding.ID, holding.UserID, holding.AssetType, holding.Symbol,
		holding.Quantity, holding.PurchasePrice, holding.PurchaseDate, holding.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add portfolio holding: %w", err)
	}

	return nil
}

func (r *PortfolioRepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.PortfolioHolding, error) {
	query := `
		SELECT id, user_id, asset_type, symbol, quantity,
		       purchase_price, purchase_date, created_at
		FROM portfolio_holdings
		WHERE user_id = $1
		ORDER BY purchase_date
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.PortfolioHolding
	for rows.Next() {
		var h domain.PortfolioHolding
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.AssetType, &h.Symbol, &h.Quantity,
			&h.PurchasePrice, &h.PurchaseDate, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	return holdings, rows.Err()
}
