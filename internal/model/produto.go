package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Produto é o registro autoritativo do catálogo. A identidade verdadeira é
// (tipo_lista, codigo) — o fornecedor participa apenas da preferência de
// correspondência na conciliação, nunca da chave. Um índice único parcial
// (status = ATIVO) garante a invariante de no máximo uma linha ativa por
// identidade.
//
// Os campos *Anterior são snapshots: capturados no instante em que o valor
// corrente muda, incondicionalmente, para suportar relatórios antes/depois.
// PrecoAnterior nulo sinaliza produto novo (nunca atualizado) ao downstream.
type Produto struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TipoLista  string `gorm:"not null;index:idx_produtos_identidade,priority:1"`
	Codigo     string `gorm:"not null;index:idx_produtos_identidade,priority:2"`
	Descricao  string
	Fornecedor string        `gorm:"index"`
	FamiliaID  *int64        `gorm:"index"`
	Status     StatusProduto `gorm:"type:varchar(12);not null;default:'ATIVO';index"`

	Preco            decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	PrecoTon         decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	PrecoAnterior    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	PrecoTonAnterior *decimal.Decimal `gorm:"type:decimal(14,2)"`

	DataValidade         *time.Time
	DataValidadeAnterior *time.Time

	QtdFilhos int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Tributo *Tributo `gorm:"foreignKey:ProdutoID;constraint:OnDelete:CASCADE"`
}

func (Produto) TableName() string { return "produtos" }

// MudarStatus valida a transição contra a tabela de estados e aplica.
// Em caso de transição ilegal o status atual permanece intacto.
func (p *Produto) MudarStatus(destino StatusProduto) error {
	if !p.Status.CanTransition(destino) {
		return fmt.Errorf("transição de status inválida para produto %d: %s -> %s", p.ID, p.Status, destino)
	}
	p.Status = destino
	return nil
}
