package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LinhaLoteRequest is one parsed price-list row handed to the core by the
// document-parsing collaborator. Structural validation of code/description
// happens at reconciliation time (rows are stored as-is for audit).
type LinhaLoteRequest struct {
	Codigo        string          `json:"codigo"`
	Descricao     string          `json:"descricao"`
	FamiliaRotulo *string         `json:"familia_rotulo"`
	PrecoTon      decimal.Decimal `json:"preco_ton"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	DataValidade  *time.Time      `json:"data_validade"`
}

// RegistrarLoteRequest registers a full ingestion batch for one group.
type RegistrarLoteRequest struct {
	Fornecedor    string             `json:"fornecedor" validate:"required"`
	TipoLista     string             `json:"tipo_lista" validate:"required"`
	ArquivoOrigem string             `json:"arquivo_origem"`
	Linhas        []LinhaLoteRequest `json:"linhas" validate:"required,min=1"`
}

// ResumoLote is the outcome of registering a batch and reconciling it.
type ResumoLote struct {
	LoteID      string             `json:"lote_id"`
	TotalLinhas int                `json:"total_linhas"`
	Conciliacao *ResumoConciliacao `json:"conciliacao"`
}
