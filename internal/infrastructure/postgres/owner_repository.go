package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var _ repository.OwnerRepository = (*OwnerRepo)(nil)

// OwnerRepo lectura de dueños.
type OwnerRepo struct {
	q Querier
}

// NewOwnerRepository construye el adaptador de dueños.
func NewOwnerRepository(q Querier) *OwnerRepo {
	return &OwnerRepo{q: q}
}

// GetByID obtiene un dueño. Devuelve nil, nil si no existe.
func (r *OwnerRepo) GetByID(ctx context.Context, id string) (*entity.Owner, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT id, name, COALESCE(phone, ''), created_at FROM owners WHERE id = $1`
	var o entity.Owner
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.Name, &o.Phone, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return &o, nil
}
