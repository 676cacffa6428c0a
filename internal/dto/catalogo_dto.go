package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProdutoResponse is the read model served to the pricing/quoting layer.
type ProdutoResponse struct {
	ID         int64  `json:"id"`
	TipoLista  string `json:"tipo_lista"`
	Codigo     string `json:"codigo"`
	Descricao  string `json:"descricao"`
	Fornecedor string `json:"fornecedor"`
	FamiliaID  *int64 `json:"familia_id,omitempty"`
	Status     string `json:"status"`

	Preco            decimal.Decimal  `json:"preco"`
	PrecoTon         decimal.Decimal  `json:"preco_ton"`
	PrecoAnterior    *decimal.Decimal `json:"preco_anterior,omitempty"`
	PrecoTonAnterior *decimal.Decimal `json:"preco_ton_anterior,omitempty"`

	DataValidade         *time.Time `json:"data_validade,omitempty"`
	DataValidadeAnterior *time.Time `json:"data_validade_anterior,omitempty"`

	QtdFilhos    int       `json:"qtd_filhos"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// FamiliaResponse exposes the family dictionary for one list type.
type FamiliaResponse struct {
	ID     int64  `json:"id"`
	Rotulo string `json:"rotulo"`
	Nome   string `json:"nome"`
	Ativo  bool   `json:"ativo"`
}
