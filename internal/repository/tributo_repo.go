package repository

import (
	"context"

	"ordersync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TributoRepository is the data access contract for product tax records.
type TributoRepository interface {
	// CriarEmLote bulk-inserts zeroed tax records for the given products in a
	// single statement batch — lists run to thousands of rows, N inserts is
	// not an option. ON CONFLICT DO NOTHING keeps the retry path idempotent.
	CriarEmLote(ctx context.Context, produtoIDs []int64) error

	BuscarPorProduto(ctx context.Context, produtoID int64) (*model.Tributo, error)

	DB() *gorm.DB
}

type tributoRepo struct{ db *gorm.DB }

func NewTributoRepository(db *gorm.DB) TributoRepository {
	return &tributoRepo{db: db}
}

func (r *tributoRepo) CriarEmLote(ctx context.Context, produtoIDs []int64) error {
	if len(produtoIDs) == 0 {
		return nil
	}
	tributos := make([]model.Tributo, 0, len(produtoIDs))
	for _, id := range produtoIDs {
		tributos = append(tributos, model.TributoZerado(id))
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(tributos, 500).Error
}

func (r *tributoRepo) BuscarPorProduto(ctx context.Context, produtoID int64) (*model.Tributo, error) {
	var t model.Tributo
	err := r.db.WithContext(ctx).Where("produto_id = ?", produtoID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tributoRepo) DB() *gorm.DB { return r.db }
