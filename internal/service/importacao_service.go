package service

import (
	"context"
	"time"

	"ordersync/internal/dto"
	"ordersync/internal/model"
	"ordersync/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ImportacaoService is the ingestion snapshot store: it registers a freshly
// parsed batch for one group, retires the previous batch, and triggers the
// group's reconciliation. Document parsing itself is an external collaborator.
type ImportacaoService interface {
	RegistrarLote(ctx context.Context, req dto.RegistrarLoteRequest) (*dto.ResumoLote, error)
}

type importacaoService struct {
	linhaRepo   repository.LinhaListaRepository
	conciliacao ConciliacaoService
	validate    *validator.Validate
}

func NewImportacaoService(linhaRepo repository.LinhaListaRepository, conciliacao ConciliacaoService) ImportacaoService {
	return &importacaoService{
		linhaRepo:   linhaRepo,
		conciliacao: conciliacao,
		validate:    validator.New(),
	}
}

func (s *importacaoService) RegistrarLote(ctx context.Context, req dto.RegistrarLoteRequest) (*dto.ResumoLote, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	loteID := uuid.New()
	agora := time.Now()

	// Rows are stored exactly as parsed — malformed rows included, for audit.
	// Reconciliation skips and counts them later.
	linhas := make([]model.LinhaLista, 0, len(req.Linhas))
	for _, l := range req.Linhas {
		linhas = append(linhas, model.LinhaLista{
			LoteID:        loteID,
			Fornecedor:    req.Fornecedor,
			TipoLista:     req.TipoLista,
			Codigo:        l.Codigo,
			Descricao:     l.Descricao,
			FamiliaRotulo: l.FamiliaRotulo,
			PrecoTon:      l.PrecoTon,
			PrecoUnitario: l.PrecoUnitario,
			DataValidade:  l.DataValidade,
			ArquivoOrigem: req.ArquivoOrigem,
			Ativo:         true,
			ImportadoEm:   agora,
		})
	}

	txErr := runTx(ctx, s.linhaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.linhaRepo.CriarLoteTx(tx, linhas); err != nil {
			return err
		}
		return s.linhaRepo.DesativarLotesAnterioresTx(tx, req.Fornecedor, req.TipoLista, loteID)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("lote_id", loteID.String()).
		Str("fornecedor", req.Fornecedor).
		Str("tipo_lista", req.TipoLista).
		Str("arquivo", req.ArquivoOrigem).
		Int("linhas", len(linhas)).
		Msg("lote registrado")

	resumo, err := s.conciliacao.Conciliar(ctx, req.Fornecedor, req.TipoLista)
	if err != nil {
		// The snapshot committed; the group can be reconciled again later.
		return nil, err
	}

	return &dto.ResumoLote{
		LoteID:      loteID.String(),
		TotalLinhas: len(linhas),
		Conciliacao: resumo,
	}, nil
}
