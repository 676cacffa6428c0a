package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LinhaLista é uma linha de tabela de preço importada de um fornecedor.
// Lotes são imutáveis: um novo lote entra com ativo=true e o lote anterior do
// mesmo grupo (fornecedor, tipo_lista) é marcado ativo=false — nunca apagado,
// preservando a trilha de auditoria completa.
type LinhaLista struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	LoteID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Fornecedor    string    `gorm:"not null;index:idx_linhas_grupo,priority:1"`
	TipoLista     string    `gorm:"not null;index:idx_linhas_grupo,priority:2"`
	Codigo        string    `gorm:"not null"`
	Descricao     string
	FamiliaRotulo *string
	PrecoTon      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	DataValidade  *time.Time
	ArquivoOrigem string
	Ativo         bool      `gorm:"not null;default:true;index:idx_linhas_grupo,priority:3"`
	ImportadoEm   time.Time `gorm:"autoCreateTime"`
}

func (LinhaLista) TableName() string { return "linhas_lista" }
