package service

import (
	"context"
	"testing"

	"ordersync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverFamilias_AlocaEmBlocos(t *testing.T) {
	repo := newStubFamiliaRepo()
	svc := NewFamiliaService(repo, 20)

	ids, err := svc.ResolverFamiliasTx(context.Background(), nil, "INSUMOS",
		[]string{"RACOES", "ADITIVOS", "RACOES"})

	require.NoError(t, err)
	// Ordem lexicográfica: ADITIVOS primeiro, depois RACOES.
	assert.Equal(t, int64(20), ids["ADITIVOS"])
	assert.Equal(t, int64(40), ids["RACOES"])
	assert.Len(t, repo.familias, 2)
}

func TestResolverFamilias_SegundaRodadaSoConsulta(t *testing.T) {
	repo := newStubFamiliaRepo()
	svc := NewFamiliaService(repo, 20)
	ctx := context.Background()

	primeira, err := svc.ResolverFamiliasTx(ctx, nil, "INSUMOS", []string{"RACOES", "ADITIVOS"})
	require.NoError(t, err)
	travadasAposPrimeira := repo.travadas

	segunda, err := svc.ResolverFamiliasTx(ctx, nil, "INSUMOS", []string{"RACOES", "ADITIVOS"})
	require.NoError(t, err)

	assert.Equal(t, primeira, segunda)
	assert.Len(t, repo.familias, 2)
	// Dicionário já cobria os rótulos — o lock de alocação não é tomado.
	assert.Equal(t, travadasAposPrimeira, repo.travadas)
}

func TestResolverFamilias_NovoRotuloContinuaDoMax(t *testing.T) {
	repo := newStubFamiliaRepo()
	repo.familias = append(repo.familias, model.Familia{
		ID: 60, TipoLista: "INSUMOS", Rotulo: "RACOES", Nome: "Rações", Ativo: true,
	})
	svc := NewFamiliaService(repo, 20)

	ids, err := svc.ResolverFamiliasTx(context.Background(), nil, "INSUMOS",
		[]string{"RACOES", "MINERAIS"})

	require.NoError(t, err)
	assert.Equal(t, int64(60), ids["RACOES"])
	assert.Equal(t, int64(80), ids["MINERAIS"])
}

func TestResolverFamilias_EscopoPorTipoDeLista(t *testing.T) {
	repo := newStubFamiliaRepo()
	repo.familias = append(repo.familias, model.Familia{
		ID: 100, TipoLista: "PET", Rotulo: "RACOES", Nome: "Rações", Ativo: true,
	})
	svc := NewFamiliaService(repo, 20)

	// Mesmo rótulo em outro tipo de lista é outra entrada, com numeração própria.
	ids, err := svc.ResolverFamiliasTx(context.Background(), nil, "INSUMOS", []string{"RACOES"})

	require.NoError(t, err)
	assert.Equal(t, int64(20), ids["RACOES"])
	assert.Len(t, repo.familias, 2)
}

func TestResolverFamilias_RotulosVazios(t *testing.T) {
	repo := newStubFamiliaRepo()
	svc := NewFamiliaService(repo, 20)

	ids, err := svc.ResolverFamiliasTx(context.Background(), nil, "INSUMOS", []string{"", ""})

	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, repo.familias)
	assert.Zero(t, repo.travadas)
}
