package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"ordersync/internal/dto"
	"ordersync/internal/model"
	"ordersync/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// DB() returns nil so runTx executes the closures directly (unit test mode).

type stubLinhaRepo struct {
	linhas []model.LinhaLista
	seq    int64
	// eventos, when shared with other stubs, records call order.
	eventos *[]string
}

func newStubLinhaRepo() *stubLinhaRepo { return &stubLinhaRepo{} }

func (r *stubLinhaRepo) CriarLoteTx(_ *gorm.DB, linhas []model.LinhaLista) error {
	for i := range linhas {
		r.seq++
		linhas[i].ID = r.seq
		r.linhas = append(r.linhas, linhas[i])
	}
	return nil
}

func (r *stubLinhaRepo) DesativarLotesAnterioresTx(_ *gorm.DB, fornecedor, tipoLista string, loteAtual uuid.UUID) error {
	for i := range r.linhas {
		l := &r.linhas[i]
		if l.Fornecedor == fornecedor && l.TipoLista == tipoLista && l.Ativo && l.LoteID != loteAtual {
			l.Ativo = false
		}
	}
	return nil
}

func (r *stubLinhaRepo) ListarAtivasTx(_ *gorm.DB, fornecedor, tipoLista string) ([]model.LinhaLista, error) {
	if r.eventos != nil {
		*r.eventos = append(*r.eventos, "lista_ativas")
	}
	var ativas []model.LinhaLista
	for _, l := range r.linhas {
		if l.Fornecedor == fornecedor && l.TipoLista == tipoLista && l.Ativo {
			ativas = append(ativas, l)
		}
	}
	return ativas, nil
}

func (r *stubLinhaRepo) ListarGruposAtivos(_ context.Context) ([]dto.GrupoLista, error) {
	vistos := make(map[dto.GrupoLista]bool)
	var grupos []dto.GrupoLista
	for _, l := range r.linhas {
		if !l.Ativo {
			continue
		}
		g := dto.GrupoLista{Fornecedor: l.Fornecedor, TipoLista: l.TipoLista}
		if !vistos[g] {
			vistos[g] = true
			grupos = append(grupos, g)
		}
	}
	sort.Slice(grupos, func(i, j int) bool {
		if grupos[i].Fornecedor != grupos[j].Fornecedor {
			return grupos[i].Fornecedor < grupos[j].Fornecedor
		}
		return grupos[i].TipoLista < grupos[j].TipoLista
	})
	return grupos, nil
}

func (r *stubLinhaRepo) DB() *gorm.DB { return nil }

var _ repository.LinhaListaRepository = (*stubLinhaRepo)(nil)

// ── Produto ──────────────────────────────────────────────────────────────────

type stubProdutoRepo struct {
	produtos map[int64]*model.Produto
	seq      int64
	tributos *stubTributoRepo

	// falharGrupo makes TravarGrupoTx fail for one supplier — simulates a
	// database failure confined to a single group.
	falharGrupo string
	eventos     *[]string
}

func newStubProdutoRepo() *stubProdutoRepo {
	return &stubProdutoRepo{produtos: make(map[int64]*model.Produto)}
}

func (r *stubProdutoRepo) TravarGrupoTx(_ *gorm.DB, fornecedor, _ string) error {
	if r.eventos != nil {
		*r.eventos = append(*r.eventos, "trava_grupo")
	}
	if r.falharGrupo != "" && fornecedor == r.falharGrupo {
		return errors.New("connection reset by peer")
	}
	return nil
}

func (r *stubProdutoRepo) ListarCandidatosTx(_ *gorm.DB, fornecedor, tipoLista string) ([]model.Produto, error) {
	var candidatos []model.Produto
	for _, p := range r.produtos {
		if p.TipoLista != tipoLista {
			continue
		}
		if p.Fornecedor == "" ||
			strings.Contains(strings.ToLower(p.Fornecedor), strings.ToLower(fornecedor)) {
			candidatos = append(candidatos, *p)
		}
	}
	sort.Slice(candidatos, func(i, j int) bool { return candidatos[i].ID > candidatos[j].ID })
	return candidatos, nil
}

func (r *stubProdutoRepo) CriarTx(_ *gorm.DB, p *model.Produto) error {
	r.seq++
	p.ID = r.seq
	copia := *p
	r.produtos[p.ID] = &copia
	return nil
}

func (r *stubProdutoRepo) AtualizarTx(_ *gorm.DB, p *model.Produto) error {
	copia := *p
	r.produtos[p.ID] = &copia
	return nil
}

func (r *stubProdutoRepo) InativarTx(_ *gorm.DB, ids []int64) error {
	for _, id := range ids {
		if p, ok := r.produtos[id]; ok {
			p.Status = model.StatusInativo
		}
	}
	return nil
}

func (r *stubProdutoRepo) ListarDuplicadosAtivos(_ context.Context) ([]model.Produto, error) {
	type chave struct{ tipoLista, codigo string }
	contagem := make(map[chave]int)
	for _, p := range r.produtos {
		if p.Status == model.StatusAtivo {
			contagem[chave{p.TipoLista, p.Codigo}]++
		}
	}
	var dups []model.Produto
	for _, p := range r.produtos {
		if p.Status == model.StatusAtivo && contagem[chave{p.TipoLista, p.Codigo}] > 1 {
			dups = append(dups, *p)
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].TipoLista != dups[j].TipoLista {
			return dups[i].TipoLista < dups[j].TipoLista
		}
		if dups[i].Codigo != dups[j].Codigo {
			return dups[i].Codigo < dups[j].Codigo
		}
		return dups[i].ID > dups[j].ID
	})
	return dups, nil
}

func (r *stubProdutoRepo) DemoverDuplicadosTx(_ *gorm.DB, ids []int64) error {
	for _, id := range ids {
		if p, ok := r.produtos[id]; ok {
			p.Status = model.StatusDuplicado
		}
	}
	return nil
}

func (r *stubProdutoRepo) IDsSemTributo(_ context.Context, limite int) ([]int64, error) {
	var ids []int64
	for id, p := range r.produtos {
		if p.Status != model.StatusAtivo {
			continue
		}
		if r.tributos == nil {
			ids = append(ids, id)
			continue
		}
		if _, ok := r.tributos.tributos[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limite {
		ids = ids[:limite]
	}
	return ids, nil
}

func (r *stubProdutoRepo) BuscarPorChave(_ context.Context, fornecedor, tipoLista, codigo string) (*model.Produto, error) {
	var melhor *model.Produto
	for _, p := range r.produtos {
		if p.TipoLista != tipoLista || p.Codigo != codigo {
			continue
		}
		if p.Fornecedor != "" &&
			!strings.Contains(strings.ToLower(p.Fornecedor), strings.ToLower(fornecedor)) {
			continue
		}
		if melhor == nil || p.ID > melhor.ID {
			melhor = p
		}
	}
	if melhor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *melhor
	return &copia, nil
}

func (r *stubProdutoRepo) ListarPorTipoEStatus(_ context.Context, tipoLista string, status model.StatusProduto) ([]model.Produto, error) {
	var out []model.Produto
	for _, p := range r.produtos {
		if p.TipoLista == tipoLista && p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func (r *stubProdutoRepo) DB() *gorm.DB { return nil }

var _ repository.ProdutoRepository = (*stubProdutoRepo)(nil)

// ── Familia ──────────────────────────────────────────────────────────────────

type stubFamiliaRepo struct {
	familias []model.Familia
	// travadas counts lock acquisitions — lets tests assert the allocation
	// lock is only taken when new ids are actually handed out.
	travadas int
}

func newStubFamiliaRepo() *stubFamiliaRepo { return &stubFamiliaRepo{} }

func (r *stubFamiliaRepo) BuscarPorRotulosTx(_ *gorm.DB, tipoLista string, rotulos []string) ([]model.Familia, error) {
	pedido := make(map[string]bool, len(rotulos))
	for _, ro := range rotulos {
		pedido[ro] = true
	}
	var out []model.Familia
	for _, f := range r.familias {
		if f.TipoLista == tipoLista && pedido[f.Rotulo] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *stubFamiliaRepo) MaxIDTx(_ *gorm.DB, tipoLista string) (int64, error) {
	var max int64
	for _, f := range r.familias {
		if f.TipoLista == tipoLista && f.ID > max {
			max = f.ID
		}
	}
	return max, nil
}

func (r *stubFamiliaRepo) CriarTx(_ *gorm.DB, f *model.Familia) error {
	for _, existente := range r.familias {
		if existente.TipoLista == f.TipoLista &&
			(existente.Rotulo == f.Rotulo || existente.ID == f.ID) {
			return errors.New("unique constraint violation")
		}
	}
	r.familias = append(r.familias, *f)
	return nil
}

func (r *stubFamiliaRepo) TravarAlocacaoTx(_ *gorm.DB, _ string) error {
	r.travadas++
	return nil
}

func (r *stubFamiliaRepo) ListarPorTipo(_ context.Context, tipoLista string) ([]model.Familia, error) {
	var out []model.Familia
	for _, f := range r.familias {
		if f.TipoLista == tipoLista {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubFamiliaRepo) DB() *gorm.DB { return nil }

var _ repository.FamiliaRepository = (*stubFamiliaRepo)(nil)

// ── Tributo ──────────────────────────────────────────────────────────────────

type stubTributoRepo struct {
	tributos map[int64]model.Tributo
	// falhas fails the next N CriarEmLote calls — simulates the bootstrap
	// outliving the catalog transaction.
	falhas int
}

func newStubTributoRepo() *stubTributoRepo {
	return &stubTributoRepo{tributos: make(map[int64]model.Tributo)}
}

func (r *stubTributoRepo) CriarEmLote(_ context.Context, produtoIDs []int64) error {
	if r.falhas > 0 {
		r.falhas--
		return errors.New("connection refused")
	}
	for _, id := range produtoIDs {
		if _, ok := r.tributos[id]; !ok {
			r.tributos[id] = model.TributoZerado(id)
		}
	}
	return nil
}

func (r *stubTributoRepo) BuscarPorProduto(_ context.Context, produtoID int64) (*model.Tributo, error) {
	t, ok := r.tributos[produtoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *stubTributoRepo) DB() *gorm.DB { return nil }

var _ repository.TributoRepository = (*stubTributoRepo)(nil)
