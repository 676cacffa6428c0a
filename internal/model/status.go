package model

// StatusProduto é o estado de um produto no catálogo. Closed set — the column
// is constrained to these values and every status mutation goes through
// Produto.MudarStatus, which enforces the transition table below.
type StatusProduto string

const (
	// StatusAtivo: the code is present in the latest active price list batch.
	StatusAtivo StatusProduto = "ATIVO"
	// StatusInativo: the code disappeared from the latest batch of its group.
	// Price fields keep their last known values for reporting.
	StatusInativo StatusProduto = "INATIVO"
	// StatusDuplicado: demoted by the duplicate-resolution pass. Reversible —
	// the row is never deleted and can be re-activated by a later batch.
	StatusDuplicado StatusProduto = "DUPLICADO"
)

// transicoes lists the valid target states for each status.
// Any status may (re)enter ATIVO when its code shows up in an active batch.
var transicoes = map[StatusProduto][]StatusProduto{
	StatusAtivo:     {StatusInativo, StatusDuplicado},
	StatusInativo:   {StatusAtivo},
	StatusDuplicado: {StatusAtivo},
}

// CanTransition reports whether moving from s to destino is allowed.
// Self-transitions are always allowed (a reconciliation update keeps ATIVO).
func (s StatusProduto) CanTransition(destino StatusProduto) bool {
	if s == destino {
		return true
	}
	for _, t := range transicoes[s] {
		if t == destino {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known states.
func (s StatusProduto) Valid() bool {
	switch s {
	case StatusAtivo, StatusInativo, StatusDuplicado:
		return true
	}
	return false
}
