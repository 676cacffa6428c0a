package service

import (
	"context"
	"regexp"
	"strconv"

	"ordersync/internal/apierror"
	"ordersync/internal/dto"
	"ordersync/internal/model"
	"ordersync/internal/repository"
	"ordersync/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ConciliacaoService diffs the active ingestion snapshot of one group
// (fornecedor, tipo_lista) against the catalog and applies the three mutation
// classes — update, insert, inactivate — in a single transaction.
type ConciliacaoService interface {
	Conciliar(ctx context.Context, fornecedor, tipoLista string) (*dto.ResumoConciliacao, error)

	// ConciliarTodos runs every group with an active batch. Per-group failures
	// are isolated: the report lists succeeded and failed groups individually.
	ConciliarTodos(ctx context.Context) ([]dto.ResultadoGrupo, error)
}

type conciliacaoService struct {
	linhaRepo   repository.LinhaListaRepository
	produtoRepo repository.ProdutoRepository
	familias    FamiliaService
	tributos    TributoService
	dispatcher  *worker.Dispatcher
}

func NewConciliacaoService(
	linhaRepo repository.LinhaListaRepository,
	produtoRepo repository.ProdutoRepository,
	familias FamiliaService,
	tributos TributoService,
	dispatcher *worker.Dispatcher,
) ConciliacaoService {
	return &conciliacaoService{
		linhaRepo:   linhaRepo,
		produtoRepo: produtoRepo,
		familias:    familias,
		tributos:    tributos,
		dispatcher:  dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Conciliar ────────────────────────────────────────────────────────────────
// One atomic unit of work per group:
//   1. Resolve family ids for every label in the active snapshot
//   2. Matched rows: snapshot current → previous fields (unconditional, even
//      when the price did not change), copy new prices + derived fields,
//      force ATIVO
//   3. This supplier's ATIVO rows whose code left the snapshot → INATIVO
//      (prices kept); other suppliers' rows are never deactivated here
//   4. Unmatched rows → insert as ATIVO with null previous fields, then
//      bootstrap a zeroed tax record per insert (best effort, after commit)

func (s *conciliacaoService) Conciliar(ctx context.Context, fornecedor, tipoLista string) (*dto.ResumoConciliacao, error) {
	resumo := &dto.ResumoConciliacao{}

	var novosIDs []int64
	txErr := runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		// The group lock must come before the snapshot read: a concurrent
		// import flips the active batch, and a snapshot read before the lock
		// grant could be applied over a newer batch's committed reconcile.
		if err := s.produtoRepo.TravarGrupoTx(tx, fornecedor, tipoLista); err != nil {
			return err
		}

		linhas, err := s.linhaRepo.ListarAtivasTx(tx, fornecedor, tipoLista)
		if err != nil {
			return err
		}
		validas := s.filtrarValidas(linhas, resumo)

		// 1. Family dictionary
		var rotulos []string
		for _, l := range validas {
			if l.FamiliaRotulo != nil && *l.FamiliaRotulo != "" {
				rotulos = append(rotulos, *l.FamiliaRotulo)
			}
		}
		familiaIDs, err := s.familias.ResolverFamiliasTx(ctx, tx, tipoLista, rotulos)
		if err != nil {
			return err
		}

		candidatos, err := s.produtoRepo.ListarCandidatosTx(tx, fornecedor, tipoLista)
		if err != nil {
			return err
		}

		// 2. Updates
		presentes := make(map[string]bool, len(validas))
		var inserir []model.LinhaLista

		for _, linha := range validas {
			presentes[linha.Codigo] = true

			melhor, err := MelhorCorrespondencia(candidatos, tipoLista, linha.Codigo, fornecedor)
			if err != nil {
				return err
			}
			if melhor == nil {
				inserir = append(inserir, linha)
				continue
			}

			if err := aplicarLinha(melhor, linha, fornecedor, familiaIDs); err != nil {
				return err
			}
			if err := s.produtoRepo.AtualizarTx(tx, melhor); err != nil {
				return err
			}
			resumo.Atualizados++
		}

		// 3. Disappearances — price fields untouched, last values stay visible.
		// Only rows owned by this exact supplier: blank and substring-matched
		// candidates participate in matching and adoption, never in deactivation,
		// so reconciling one group cannot inactivate another supplier's catalog.
		var sumiram []int64
		for i := range candidatos {
			c := &candidatos[i]
			if c.Fornecedor != fornecedor || c.Status != model.StatusAtivo || presentes[c.Codigo] {
				continue
			}
			if err := c.MudarStatus(model.StatusInativo); err != nil {
				return err
			}
			sumiram = append(sumiram, c.ID)
		}
		if err := s.produtoRepo.InativarTx(tx, sumiram); err != nil {
			return err
		}
		resumo.Inativados = len(sumiram)

		// 4. Inserts — null previous fields signal "new" to reporting
		for _, linha := range inserir {
			p := &model.Produto{
				TipoLista:    tipoLista,
				Codigo:       linha.Codigo,
				Descricao:    linha.Descricao,
				Fornecedor:   fornecedor,
				Status:       model.StatusAtivo,
				Preco:        linha.PrecoUnitario,
				PrecoTon:     linha.PrecoTon,
				DataValidade: linha.DataValidade,
				QtdFilhos:    qtdFilhosDaDescricao(linha.Descricao),
			}
			if linha.FamiliaRotulo != nil {
				if id, ok := familiaIDs[*linha.FamiliaRotulo]; ok {
					p.FamiliaID = &id
				}
			}
			if err := s.produtoRepo.CriarTx(tx, p); err != nil {
				return err
			}
			novosIDs = append(novosIDs, p.ID)
			resumo.Inseridos++
		}
		return nil
	})
	if txErr != nil {
		return nil, &apierror.TransactionError{Fornecedor: fornecedor, TipoLista: tipoLista, Err: txErr}
	}

	// Tax bootstrap runs after commit on purpose: a failure here must never
	// roll back the catalog — the new products stay visible and the records
	// are created by the async retry path instead.
	if len(novosIDs) > 0 {
		if err := s.tributos.CriarZerados(ctx, novosIDs); err != nil {
			log.Error().Err(err).
				Str("fornecedor", fornecedor).
				Str("tipo_lista", tipoLista).
				Int("produtos", len(novosIDs)).
				Msg("bootstrap de tributos falhou, enfileirando retry")
			if s.dispatcher != nil {
				_ = s.dispatcher.EnqueueTributos(ctx, novosIDs)
			}
		}
	}

	log.Info().
		Str("fornecedor", fornecedor).
		Str("tipo_lista", tipoLista).
		Int("atualizados", resumo.Atualizados).
		Int("inativados", resumo.Inativados).
		Int("inseridos", resumo.Inseridos).
		Int("ignorados", resumo.Ignorados).
		Msg("conciliação concluída")
	return resumo, nil
}

// filtrarValidas drops malformed rows (missing code or description) and
// collapses in-batch code repetitions to the last occurrence, counting both
// as Ignorados. Never fatal to the batch.
func (s *conciliacaoService) filtrarValidas(linhas []model.LinhaLista, resumo *dto.ResumoConciliacao) []model.LinhaLista {
	porCodigo := make(map[string]int, len(linhas))
	var validas []model.LinhaLista
	for _, l := range linhas {
		if l.Codigo == "" || l.Descricao == "" {
			resumo.Ignorados++
			verr := &apierror.ValidationError{LinhaID: l.ID, Codigo: l.Codigo, Motivo: "codigo ou descricao ausente"}
			log.Warn().Str("arquivo", l.ArquivoOrigem).Msg(verr.Error())
			continue
		}
		if idx, visto := porCodigo[l.Codigo]; visto {
			// Later occurrence wins — re-listed items supersede earlier rows.
			validas[idx] = l
			resumo.Ignorados++
			continue
		}
		porCodigo[l.Codigo] = len(validas)
		validas = append(validas, l)
	}
	return validas
}

// aplicarLinha copies an ingestion row onto a matched catalog entry. The
// previous-value snapshot is unconditional — even when the new price equals
// the old one — keeping the audit trail simple and predictable.
func aplicarLinha(p *model.Produto, linha model.LinhaLista, fornecedor string, familiaIDs map[string]int64) error {
	if err := p.MudarStatus(model.StatusAtivo); err != nil {
		return err
	}

	precoAtual := p.Preco
	precoTonAtual := p.PrecoTon
	p.PrecoAnterior = &precoAtual
	p.PrecoTonAnterior = &precoTonAtual
	p.DataValidadeAnterior = p.DataValidade

	p.Preco = linha.PrecoUnitario
	p.PrecoTon = linha.PrecoTon
	p.DataValidade = linha.DataValidade
	p.Descricao = linha.Descricao
	p.Fornecedor = fornecedor
	p.QtdFilhos = qtdFilhosDaDescricao(linha.Descricao)
	if linha.FamiliaRotulo != nil {
		if id, ok := familiaIDs[*linha.FamiliaRotulo]; ok {
			p.FamiliaID = &id
		}
	}
	return nil
}

// Embalagens vêm descritas como "12X25KG", "CX 6X5L" etc — o multiplicador é
// a quantidade de filhos da embalagem.
var reEmbalagem = regexp.MustCompile(`(?i)\b(\d{1,3})\s*X\s*\d`)

func qtdFilhosDaDescricao(descricao string) int {
	m := reEmbalagem.FindStringSubmatch(descricao)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ── ConciliarTodos ───────────────────────────────────────────────────────────

func (s *conciliacaoService) ConciliarTodos(ctx context.Context) ([]dto.ResultadoGrupo, error) {
	grupos, err := s.linhaRepo.ListarGruposAtivos(ctx)
	if err != nil {
		return nil, err
	}

	resultados := make([]dto.ResultadoGrupo, 0, len(grupos))
	for _, g := range grupos {
		resultado := dto.ResultadoGrupo{Fornecedor: g.Fornecedor, TipoLista: g.TipoLista}
		resumo, err := s.Conciliar(ctx, g.Fornecedor, g.TipoLista)
		if err != nil {
			resultado.Erro = err.Error()
			log.Error().Err(err).
				Str("fornecedor", g.Fornecedor).
				Str("tipo_lista", g.TipoLista).
				Msg("grupo falhou, seguindo para o próximo")
		} else {
			resultado.Resumo = resumo
		}
		resultados = append(resultados, resultado)
	}
	return resultados, nil
}
