package dto

// ResumoConciliacao é o retorno de uma conciliação de grupo.
type ResumoConciliacao struct {
	Atualizados int `json:"atualizados"`
	Inativados  int `json:"inativados"`
	Inseridos   int `json:"inseridos"`
	// Ignorados counts malformed rows skipped (missing code/description) and
	// in-batch code repetitions collapsed to the last occurrence.
	Ignorados int `json:"ignorados"`
}

// GrupoLista identifies one (fornecedor, tipo_lista) reconciliation scope.
type GrupoLista struct {
	Fornecedor string `json:"fornecedor"`
	TipoLista  string `json:"tipo_lista"`
}

// ResultadoGrupo is one entry of a multi-group run report. Failed groups
// carry Erro and a nil Resumo; failures never abort the remaining groups.
type ResultadoGrupo struct {
	Fornecedor string             `json:"fornecedor"`
	TipoLista  string             `json:"tipo_lista"`
	Resumo     *ResumoConciliacao `json:"resumo,omitempty"`
	Erro       string             `json:"erro,omitempty"`
}

// RelatorioDuplicados describes one (tipo_lista, codigo) partition that
// violated the one-active-row invariant, and how it was (or would be) fixed.
// Dry-run and apply mode produce the same report by construction.
type RelatorioDuplicados struct {
	TipoLista string  `json:"tipo_lista"`
	Codigo    string  `json:"codigo"`
	MantidoID int64   `json:"mantido_id"`
	Demovidos []int64 `json:"demovidos"`
}
