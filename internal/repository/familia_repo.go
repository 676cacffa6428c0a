package repository

import (
	"context"

	"ordersync/internal/infra"
	"ordersync/internal/model"

	"gorm.io/gorm"
)

// FamiliaRepository is the data access contract for the family dictionary.
type FamiliaRepository interface {
	// BuscarPorRotulosTx resolves existing entries for the given raw labels,
	// scoped to one list type, inside the caller's transaction.
	BuscarPorRotulosTx(tx *gorm.DB, tipoLista string, rotulos []string) ([]model.Familia, error)

	// MaxIDTx returns the highest id allocated for a list type (0 when empty).
	MaxIDTx(tx *gorm.DB, tipoLista string) (int64, error)

	CriarTx(tx *gorm.DB, f *model.Familia) error

	// TravarAlocacaoTx serializes id allocation per list type — the only
	// cross-group contention point. Transaction-scoped: the lock must outlive
	// the inserts up to commit, or a concurrent MAX(id) read could hand out
	// the same block before the new rows become visible.
	TravarAlocacaoTx(tx *gorm.DB, tipoLista string) error

	ListarPorTipo(ctx context.Context, tipoLista string) ([]model.Familia, error)

	DB() *gorm.DB
}

type familiaRepo struct{ db *gorm.DB }

func NewFamiliaRepository(db *gorm.DB) FamiliaRepository {
	return &familiaRepo{db: db}
}

func (r *familiaRepo) BuscarPorRotulosTx(tx *gorm.DB, tipoLista string, rotulos []string) ([]model.Familia, error) {
	var familias []model.Familia
	if len(rotulos) == 0 {
		return familias, nil
	}
	err := tx.Where("tipo_lista = ? AND rotulo IN ?", tipoLista, rotulos).
		Find(&familias).Error
	return familias, err
}

func (r *familiaRepo) MaxIDTx(tx *gorm.DB, tipoLista string) (int64, error) {
	var max int64
	err := tx.Model(&model.Familia{}).
		Where("tipo_lista = ?", tipoLista).
		Select("COALESCE(MAX(id), 0)").
		Scan(&max).Error
	return max, err
}

func (r *familiaRepo) CriarTx(tx *gorm.DB, f *model.Familia) error {
	return tx.Create(f).Error
}

func (r *familiaRepo) TravarAlocacaoTx(tx *gorm.DB, tipoLista string) error {
	return infra.AdvisoryXactLock(tx, "familias:alocacao:"+tipoLista)
}

func (r *familiaRepo) ListarPorTipo(ctx context.Context, tipoLista string) ([]model.Familia, error) {
	var familias []model.Familia
	err := r.db.WithContext(ctx).
		Where("tipo_lista = ?", tipoLista).
		Order("id ASC").
		Find(&familias).Error
	return familias, err
}

func (r *familiaRepo) DB() *gorm.DB { return r.db }
