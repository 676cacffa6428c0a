package service

import (
	"context"
	"sort"
	"strings"

	"ordersync/internal/dto"
	"ordersync/internal/model"
	"ordersync/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DuplicadosService is the idempotent cleanup pass for catalog rows that
// violate the one-active-row-per-(codigo, tipo_lista) invariant. Legacy data
// is the only source of these — reconciliation itself is duplicate-safe.
type DuplicadosService interface {
	// Resolver reports every duplicate partition and, when dryRun is false,
	// demotes the losers to DUPLICADO in one transaction. Both modes share
	// the same ranking, so a dry-run predicts the apply outcome exactly.
	Resolver(ctx context.Context, dryRun bool) ([]dto.RelatorioDuplicados, error)
}

type duplicadosService struct {
	repo repository.ProdutoRepository
	// marcador is the canonical-supplier marker: rows whose supplier contains
	// it (case-insensitive) win their partition.
	marcador string
}

func NewDuplicadosService(repo repository.ProdutoRepository, marcadorCanonico string) DuplicadosService {
	return &duplicadosService{repo: repo, marcador: marcadorCanonico}
}

func (s *duplicadosService) Resolver(ctx context.Context, dryRun bool) ([]dto.RelatorioDuplicados, error) {
	duplicados, err := s.repo.ListarDuplicadosAtivos(ctx)
	if err != nil {
		return nil, err
	}

	relatorios, err := s.particionar(duplicados)
	if err != nil {
		return nil, err
	}
	if dryRun || len(relatorios) == 0 {
		return relatorios, nil
	}

	var demover []int64
	for _, r := range relatorios {
		demover = append(demover, r.Demovidos...)
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DemoverDuplicadosTx(tx, demover)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("particoes", len(relatorios)).
		Int("demovidos", len(demover)).
		Msg("duplicados resolvidos")
	return relatorios, nil
}

// particionar groups active duplicates by (tipo_lista, codigo) and ranks each
// partition: canonical-supplier rows first, then newest id. The head survives;
// every loser has its demotion validated against the status transition table.
func (s *duplicadosService) particionar(duplicados []model.Produto) ([]dto.RelatorioDuplicados, error) {
	type chave struct{ tipoLista, codigo string }
	particoes := make(map[chave][]model.Produto)
	var ordem []chave
	for _, p := range duplicados {
		k := chave{p.TipoLista, p.Codigo}
		if _, ok := particoes[k]; !ok {
			ordem = append(ordem, k)
		}
		particoes[k] = append(particoes[k], p)
	}

	var relatorios []dto.RelatorioDuplicados
	for _, k := range ordem {
		grupo := particoes[k]
		if len(grupo) < 2 {
			continue
		}
		sort.SliceStable(grupo, func(i, j int) bool {
			ri, rj := s.rankDuplicado(grupo[i]), s.rankDuplicado(grupo[j])
			if ri != rj {
				return ri < rj
			}
			return grupo[i].ID > grupo[j].ID
		})

		r := dto.RelatorioDuplicados{
			TipoLista: k.tipoLista,
			Codigo:    k.codigo,
			MantidoID: grupo[0].ID,
		}
		for i := range grupo[1:] {
			perdedor := &grupo[1+i]
			if err := perdedor.MudarStatus(model.StatusDuplicado); err != nil {
				return nil, err
			}
			r.Demovidos = append(r.Demovidos, perdedor.ID)
		}
		relatorios = append(relatorios, r)
	}
	return relatorios, nil
}

func (s *duplicadosService) rankDuplicado(p model.Produto) int {
	if s.marcador != "" &&
		strings.Contains(strings.ToLower(p.Fornecedor), strings.ToLower(s.marcador)) {
		return 1
	}
	return 2
}
