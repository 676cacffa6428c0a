package repository

import (
	"context"

	"ordersync/internal/dto"
	"ordersync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinhaListaRepository is the data access contract for ingestion snapshots.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type LinhaListaRepository interface {
	// CriarLoteTx bulk-inserts a whole batch inside the caller's transaction.
	CriarLoteTx(tx *gorm.DB, linhas []model.LinhaLista) error

	// DesativarLotesAnterioresTx flips every older batch of the group to
	// ativo=false. Rows are never deleted — the audit trail is append-only.
	DesativarLotesAnterioresTx(tx *gorm.DB, fornecedor, tipoLista string, loteAtual uuid.UUID) error

	// ListarAtivasTx returns the active snapshot for one group. Runs inside the
	// caller's transaction so the read is ordered after the group advisory lock.
	ListarAtivasTx(tx *gorm.DB, fornecedor, tipoLista string) ([]model.LinhaLista, error)

	// ListarGruposAtivos returns the distinct (fornecedor, tipo_lista) pairs
	// that currently have an active batch — the scope of a run-all.
	ListarGruposAtivos(ctx context.Context) ([]dto.GrupoLista, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type linhaListaRepo struct{ db *gorm.DB }

func NewLinhaListaRepository(db *gorm.DB) LinhaListaRepository {
	return &linhaListaRepo{db: db}
}

func (r *linhaListaRepo) CriarLoteTx(tx *gorm.DB, linhas []model.LinhaLista) error {
	return tx.CreateInBatches(linhas, 500).Error
}

func (r *linhaListaRepo) DesativarLotesAnterioresTx(tx *gorm.DB, fornecedor, tipoLista string, loteAtual uuid.UUID) error {
	return tx.Model(&model.LinhaLista{}).
		Where("fornecedor = ? AND tipo_lista = ? AND ativo = true AND lote_id <> ?",
			fornecedor, tipoLista, loteAtual).
		Update("ativo", false).Error
}

func (r *linhaListaRepo) ListarAtivasTx(tx *gorm.DB, fornecedor, tipoLista string) ([]model.LinhaLista, error) {
	var linhas []model.LinhaLista
	err := tx.
		Where("fornecedor = ? AND tipo_lista = ? AND ativo = true", fornecedor, tipoLista).
		Order("id ASC").
		Find(&linhas).Error
	return linhas, err
}

func (r *linhaListaRepo) ListarGruposAtivos(ctx context.Context) ([]dto.GrupoLista, error) {
	var grupos []dto.GrupoLista
	err := r.db.WithContext(ctx).
		Model(&model.LinhaLista{}).
		Distinct("fornecedor", "tipo_lista").
		Where("ativo = true").
		Order("fornecedor, tipo_lista").
		Find(&grupos).Error
	return grupos, err
}

func (r *linhaListaRepo) DB() *gorm.DB { return r.db }
