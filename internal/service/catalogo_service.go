package service

import (
	"context"

	"ordersync/internal/dto"
	"ordersync/internal/model"
	"ordersync/internal/repository"
)

// CatalogoService is the read surface of the catalog consumed by the
// pricing/quoting layer: key lookups and (tipo_lista, status) range scans.
type CatalogoService interface {
	BuscarProduto(ctx context.Context, fornecedor, tipoLista, codigo string) (*dto.ProdutoResponse, error)
	ListarPorTipo(ctx context.Context, tipoLista string, status model.StatusProduto) ([]dto.ProdutoResponse, error)
	ListarFamilias(ctx context.Context, tipoLista string) ([]dto.FamiliaResponse, error)
}

type catalogoService struct {
	produtoRepo repository.ProdutoRepository
	familiaRepo repository.FamiliaRepository
}

func NewCatalogoService(produtoRepo repository.ProdutoRepository, familiaRepo repository.FamiliaRepository) CatalogoService {
	return &catalogoService{produtoRepo: produtoRepo, familiaRepo: familiaRepo}
}

func (s *catalogoService) BuscarProduto(ctx context.Context, fornecedor, tipoLista, codigo string) (*dto.ProdutoResponse, error) {
	p, err := s.produtoRepo.BuscarPorChave(ctx, fornecedor, tipoLista, codigo)
	if err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *catalogoService) ListarPorTipo(ctx context.Context, tipoLista string, status model.StatusProduto) ([]dto.ProdutoResponse, error) {
	produtos, err := s.produtoRepo.ListarPorTipoEStatus(ctx, tipoLista, status)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		resp = append(resp, *produtoToResponse(&produtos[i]))
	}
	return resp, nil
}

func (s *catalogoService) ListarFamilias(ctx context.Context, tipoLista string) ([]dto.FamiliaResponse, error) {
	familias, err := s.familiaRepo.ListarPorTipo(ctx, tipoLista)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FamiliaResponse, 0, len(familias))
	for _, f := range familias {
		resp = append(resp, dto.FamiliaResponse{
			ID:     f.ID,
			Rotulo: f.Rotulo,
			Nome:   f.Nome,
			Ativo:  f.Ativo,
		})
	}
	return resp, nil
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:                   p.ID,
		TipoLista:            p.TipoLista,
		Codigo:               p.Codigo,
		Descricao:            p.Descricao,
		Fornecedor:           p.Fornecedor,
		FamiliaID:            p.FamiliaID,
		Status:               string(p.Status),
		Preco:                p.Preco,
		PrecoTon:             p.PrecoTon,
		PrecoAnterior:        p.PrecoAnterior,
		PrecoTonAnterior:     p.PrecoTonAnterior,
		DataValidade:         p.DataValidade,
		DataValidadeAnterior: p.DataValidadeAnterior,
		QtdFilhos:            p.QtdFilhos,
		AtualizadoEm:         p.UpdatedAt,
	}
}
