package service

import (
	"context"

	"ordersync/internal/apierror"
	"ordersync/internal/repository"
)

// TributoService bootstraps zeroed tax records for newly inserted products.
// Deliberately a best-effort finishing step with its own retry path — it is
// never part of the catalog transaction.
type TributoService interface {
	CriarZerados(ctx context.Context, produtoIDs []int64) error
}

type tributoService struct {
	repo repository.TributoRepository
}

func NewTributoService(repo repository.TributoRepository) TributoService {
	return &tributoService{repo: repo}
}

func (s *tributoService) CriarZerados(ctx context.Context, produtoIDs []int64) error {
	if len(produtoIDs) == 0 {
		return nil
	}
	if err := s.repo.CriarEmLote(ctx, produtoIDs); err != nil {
		return &apierror.BootstrapPartialFailure{ProdutoIDs: produtoIDs, Err: err}
	}
	return nil
}
