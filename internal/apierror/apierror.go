// Package apierror defines the closed error taxonomy of the reconciliation
// core. Every error that crosses the service boundary is one of these types,
// so the calling layer reports structured summaries instead of raw DB errors.
package apierror

import (
	"fmt"
	"strings"
)

// ValidationError marks a malformed ingestion row (missing code or
// description). The row is skipped and counted — never fatal to the batch.
type ValidationError struct {
	LinhaID int64
	Codigo  string
	Motivo  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("linha %d (codigo %q) inválida: %s", e.LinhaID, e.Codigo, e.Motivo)
}

// MatchAmbiguityError is raised when the identity matcher cannot pick a single
// winner. The deterministic tie-break (rank, then id desc) makes this
// unreachable under a well-formed catalog; reaching it means the identity rule
// is misconfigured, and guessing would corrupt the audit trail.
type MatchAmbiguityError struct {
	TipoLista  string
	Codigo     string
	Candidatos []int64
}

func (e *MatchAmbiguityError) Error() string {
	ids := make([]string, len(e.Candidatos))
	for i, id := range e.Candidatos {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("correspondência ambígua para (%s, %s): candidatos [%s]",
		e.TipoLista, e.Codigo, strings.Join(ids, ", "))
}

// TransactionError wraps a database failure during one group's reconciliation.
// The whole group rolled back; other groups are unaffected.
type TransactionError struct {
	Fornecedor string
	TipoLista  string
	Err        error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("conciliação do grupo (%s, %s) falhou: %v", e.Fornecedor, e.TipoLista, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// BootstrapPartialFailure signals that tax-record creation failed for newly
// inserted products. The catalog insert already committed — this is retried
// asynchronously and never blocks catalog visibility of the new products.
type BootstrapPartialFailure struct {
	ProdutoIDs []int64
	Err        error
}

func (e *BootstrapPartialFailure) Error() string {
	return fmt.Sprintf("bootstrap de tributos falhou para %d produtos: %v", len(e.ProdutoIDs), e.Err)
}

func (e *BootstrapPartialFailure) Unwrap() error { return e.Err }
