package service

import (
	"strings"

	"ordersync/internal/apierror"
	"ordersync/internal/model"
)

// Identity matching pairs an ingestion row with at most one catalog row.
// (tipo_lista, codigo) equality is mandatory; the supplier string is then
// ranked with a three-tier preference. The ranking is deliberately a
// standalone function so the tie-break order is testable in isolation.

// Supplier compatibility tiers — lower wins.
const (
	rankSemFornecedor = 0 // catalog supplier blank: unassigned, always eligible
	rankExato         = 1
	rankContem        = 2  // catalog supplier contains the ingestion supplier
	rankIncompativel  = -1 // not a candidate
)

// RankFornecedor classifies a catalog supplier string against the ingestion
// supplier. The substring tier is a deliberate leniency for supplier-name
// drift across data sources ("Acme" vs "Acme Global LTDA").
func RankFornecedor(fornecedorCatalogo, fornecedorLista string) int {
	switch {
	case strings.TrimSpace(fornecedorCatalogo) == "":
		return rankSemFornecedor
	case fornecedorCatalogo == fornecedorLista:
		return rankExato
	case strings.Contains(strings.ToLower(fornecedorCatalogo), strings.ToLower(fornecedorLista)):
		return rankContem
	default:
		return rankIncompativel
	}
}

// MelhorCorrespondencia picks the best catalog candidate for one ingestion
// row: lowest rank wins, ties broken by newest id. Returns nil when no
// candidate is compatible. This ordering decides which historical row
// survives when legacy data carries duplicates, so it must stay stable.
func MelhorCorrespondencia(candidatos []model.Produto, tipoLista, codigo, fornecedor string) (*model.Produto, error) {
	var melhor *model.Produto
	melhorRank := rankIncompativel

	for i := range candidatos {
		c := &candidatos[i]
		if c.TipoLista != tipoLista || c.Codigo != codigo {
			continue
		}
		rank := RankFornecedor(c.Fornecedor, fornecedor)
		if rank == rankIncompativel {
			continue
		}
		switch {
		case melhor == nil, rank < melhorRank:
			melhor, melhorRank = c, rank
		case rank == melhorRank && c.ID > melhor.ID:
			melhor = c
		case rank == melhorRank && c.ID == melhor.ID && c != melhor:
			// Two distinct rows with the same id cannot come from the catalog;
			// the identity rule is misconfigured. Refuse to guess.
			return nil, &apierror.MatchAmbiguityError{
				TipoLista:  tipoLista,
				Codigo:     codigo,
				Candidatos: []int64{melhor.ID, c.ID},
			}
		}
	}
	return melhor, nil
}
