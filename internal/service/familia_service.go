package service

import (
	"context"
	"fmt"
	"sort"

	"ordersync/internal/model"
	"ordersync/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FamiliaService resolve rótulos de família vindos da tabela de preço contra
// o dicionário persistente, criando entradas novas na primeira ocorrência.
type FamiliaService interface {
	// ResolverFamiliasTx returns rotulo → id covering every label. Runs inside
	// the caller's reconciliation transaction. Pure lookup when the dictionary
	// already covers all labels; id allocation is serialized per list type.
	ResolverFamiliasTx(ctx context.Context, tx *gorm.DB, tipoLista string, rotulos []string) (map[string]int64, error)
}

type familiaService struct {
	repo  repository.FamiliaRepository
	passo int64
}

// NewFamiliaService builds the resolver. passo is the id block increment
// (max + passo, not +1) — the numbering gap is reserved for manual entries.
func NewFamiliaService(repo repository.FamiliaRepository, passo int64) FamiliaService {
	if passo < 1 {
		passo = 1
	}
	return &familiaService{repo: repo, passo: passo}
}

func (s *familiaService) ResolverFamiliasTx(ctx context.Context, tx *gorm.DB, tipoLista string, rotulos []string) (map[string]int64, error) {
	resolvidas := make(map[string]int64, len(rotulos))

	// Dedupe preserving nothing but the set — order is re-imposed below.
	distintos := make(map[string]struct{}, len(rotulos))
	for _, r := range rotulos {
		if r != "" {
			distintos[r] = struct{}{}
		}
	}
	if len(distintos) == 0 {
		return resolvidas, nil
	}

	busca := make([]string, 0, len(distintos))
	for r := range distintos {
		busca = append(busca, r)
	}
	existentes, err := s.repo.BuscarPorRotulosTx(tx, tipoLista, busca)
	if err != nil {
		return nil, fmt.Errorf("buscando familias: %w", err)
	}
	for _, f := range existentes {
		resolvidas[f.Rotulo] = f.ID
	}

	// Lexicographic order makes repeated runs over the same input allocate
	// the same ids against an empty dictionary.
	var novos []string
	for r := range distintos {
		if _, ok := resolvidas[r]; !ok {
			novos = append(novos, r)
		}
	}
	if len(novos) == 0 {
		return resolvidas, nil
	}
	sort.Strings(novos)

	// The allocation lock is taken lazily — groups whose labels are all known
	// never contend. It must be held through commit: releasing earlier would
	// let a concurrent MAX(id) read hand out the same block before the new
	// rows become visible.
	if err := s.repo.TravarAlocacaoTx(tx, tipoLista); err != nil {
		return nil, fmt.Errorf("travando alocacao de familias: %w", err)
	}

	maxID, err := s.repo.MaxIDTx(tx, tipoLista)
	if err != nil {
		return nil, fmt.Errorf("lendo max id de familias: %w", err)
	}

	for _, rotulo := range novos {
		maxID += s.passo
		f := &model.Familia{
			ID:        maxID,
			TipoLista: tipoLista,
			Rotulo:    rotulo,
			Nome:      rotulo,
			Ativo:     true,
		}
		if err := s.repo.CriarTx(tx, f); err != nil {
			return nil, fmt.Errorf("criando familia %q: %w", rotulo, err)
		}
		resolvidas[rotulo] = f.ID
		log.Info().
			Str("tipo_lista", tipoLista).
			Str("rotulo", rotulo).
			Int64("familia_id", f.ID).
			Msg("familia criada a partir da lista")
	}
	return resolvidas, nil
}
