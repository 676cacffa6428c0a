package repository

import (
	"context"
	"fmt"
	"strings"

	"ordersync/internal/infra"
	"ordersync/internal/model"

	"gorm.io/gorm"
)

// ProdutoRepository is the data access contract for the product catalog.
type ProdutoRepository interface {
	// TravarGrupoTx serializes concurrent reconciliations of the same group.
	// Transaction-scoped: released automatically at commit/rollback.
	TravarGrupoTx(tx *gorm.DB, fornecedor, tipoLista string) error

	// ListarCandidatosTx returns every catalog row of the list type whose
	// supplier could belong to fornecedor (blank, exact, or containing it,
	// case-insensitive), any status, newest first. The identity matcher ranks
	// this superset in memory.
	ListarCandidatosTx(tx *gorm.DB, fornecedor, tipoLista string) ([]model.Produto, error)

	CriarTx(tx *gorm.DB, p *model.Produto) error
	AtualizarTx(tx *gorm.DB, p *model.Produto) error

	// InativarTx flips the given rows to INATIVO without touching price fields.
	InativarTx(tx *gorm.DB, ids []int64) error

	// ListarDuplicadosAtivos returns every ATIVO row whose (tipo_lista, codigo)
	// appears more than once among ATIVO rows, ordered for partitioning.
	ListarDuplicadosAtivos(ctx context.Context) ([]model.Produto, error)

	// DemoverDuplicadosTx marks the losing rows of a duplicate partition.
	DemoverDuplicadosTx(tx *gorm.DB, ids []int64) error

	// IDsSemTributo lists ATIVO products missing their tax record — the
	// repair query of the bootstrap retry cron.
	IDsSemTributo(ctx context.Context, limite int) ([]int64, error)

	// Read access for the pricing layer.
	BuscarPorChave(ctx context.Context, fornecedor, tipoLista, codigo string) (*model.Produto, error)
	ListarPorTipoEStatus(ctx context.Context, tipoLista string, status model.StatusProduto) ([]model.Produto, error)

	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository {
	return &produtoRepo{db: db}
}

func (r *produtoRepo) TravarGrupoTx(tx *gorm.DB, fornecedor, tipoLista string) error {
	return infra.AdvisoryXactLock(tx, fmt.Sprintf("conciliacao:%s:%s", fornecedor, tipoLista))
}

// escapeLike neutralizes LIKE metacharacters in supplier names so a name
// containing % or _ cannot widen the candidate pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *produtoRepo) ListarCandidatosTx(tx *gorm.DB, fornecedor, tipoLista string) ([]model.Produto, error) {
	var produtos []model.Produto
	err := tx.
		Where("tipo_lista = ?", tipoLista).
		Where("fornecedor = '' OR fornecedor ILIKE ?", "%"+escapeLike(fornecedor)+"%").
		Order("id DESC").
		Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) CriarTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Create(p).Error
}

func (r *produtoRepo) AtualizarTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Save(p).Error
}

func (r *produtoRepo) InativarTx(tx *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&model.Produto{}).
		Where("id IN ?", ids).
		Update("status", model.StatusInativo).Error
}

func (r *produtoRepo) ListarDuplicadosAtivos(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusAtivo).
		Where(`(tipo_lista, codigo) IN (
			SELECT tipo_lista, codigo FROM produtos
			WHERE status = ? GROUP BY tipo_lista, codigo HAVING COUNT(*) > 1)`,
			model.StatusAtivo).
		Order("tipo_lista, codigo, id DESC").
		Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) DemoverDuplicadosTx(tx *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&model.Produto{}).
		Where("id IN ?", ids).
		Update("status", model.StatusDuplicado).Error
}

func (r *produtoRepo) IDsSemTributo(ctx context.Context, limite int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Produto{}).
		Select("produtos.id").
		Joins("LEFT JOIN tributos ON tributos.produto_id = produtos.id").
		Where("produtos.status = ? AND tributos.id IS NULL", model.StatusAtivo).
		Order("produtos.id ASC").
		Limit(limite).
		Scan(&ids).Error
	return ids, err
}

func (r *produtoRepo) BuscarPorChave(ctx context.Context, fornecedor, tipoLista, codigo string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).
		Where("tipo_lista = ? AND codigo = ?", tipoLista, codigo).
		Where("fornecedor = '' OR fornecedor ILIKE ?", "%"+escapeLike(fornecedor)+"%").
		Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) ListarPorTipoEStatus(ctx context.Context, tipoLista string, status model.StatusProduto) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("tipo_lista = ? AND status = ?", tipoLista, status).
		Order("codigo ASC").
		Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) DB() *gorm.DB { return r.db }
