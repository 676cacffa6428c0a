package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tributo guarda as alíquotas fiscais de um produto, 1:1 com Produto.
// Criado zerado no momento da inserção do produto no catálogo e editado
// depois pelos mantenedores — a conciliação nunca toca alíquotas existentes.
type Tributo struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	ProdutoID int64 `gorm:"not null;uniqueIndex"`

	ICMS   decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	IPI    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	PIS    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	COFINS decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Tributo) TableName() string { return "tributos" }

// TributoZerado builds the bootstrap record created alongside a new product.
func TributoZerado(produtoID int64) Tributo {
	return Tributo{
		ProdutoID: produtoID,
		ICMS:      decimal.Zero,
		IPI:       decimal.Zero,
		PIS:       decimal.Zero,
		COFINS:    decimal.Zero,
	}
}
