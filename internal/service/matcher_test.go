package service

import (
	"testing"

	"ordersync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFornecedor(t *testing.T) {
	casos := []struct {
		nome     string
		catalogo string
		lista    string
		esperado int
	}{
		{"em branco é sempre elegível", "", "Acme", rankSemFornecedor},
		{"somente espaços conta como branco", "   ", "Acme", rankSemFornecedor},
		{"igualdade exata", "Acme", "Acme", rankExato},
		{"contém como substring", "Acme Global LTDA", "Acme", rankContem},
		{"substring ignora caixa", "ACME GLOBAL", "acme", rankContem},
		{"incompatível", "Other Co", "Acme", rankIncompativel},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			assert.Equal(t, c.esperado, RankFornecedor(c.catalogo, c.lista))
		})
	}
}

func produto(id int64, tipoLista, codigo, fornecedor string) model.Produto {
	return model.Produto{
		ID:         id,
		TipoLista:  tipoLista,
		Codigo:     codigo,
		Fornecedor: fornecedor,
		Status:     model.StatusAtivo,
	}
}

func TestMelhorCorrespondencia_ExigeTipoECodigo(t *testing.T) {
	candidatos := []model.Produto{
		produto(1, "INSUMOS", "A1", "Acme"),
		produto(2, "PET", "A1", "Acme"),
		produto(3, "INSUMOS", "B2", "Acme"),
	}

	melhor, err := MelhorCorrespondencia(candidatos, "INSUMOS", "A1", "Acme")
	require.NoError(t, err)
	require.NotNil(t, melhor)
	assert.Equal(t, int64(1), melhor.ID)
}

func TestMelhorCorrespondencia_PreferenciaEmBranco(t *testing.T) {
	// Linha sem fornecedor atribuído ganha até de uma igualdade exata:
	// é o primeiro nível de preferência, na ordem da regra.
	candidatos := []model.Produto{
		produto(10, "INSUMOS", "A1", "Acme"),
		produto(5, "INSUMOS", "A1", ""),
	}

	melhor, err := MelhorCorrespondencia(candidatos, "INSUMOS", "A1", "Acme")
	require.NoError(t, err)
	assert.Equal(t, int64(5), melhor.ID)
}

func TestMelhorCorrespondencia_ExatoGanhaDeSubstring(t *testing.T) {
	candidatos := []model.Produto{
		produto(20, "INSUMOS", "A1", "Acme Global LTDA"),
		produto(7, "INSUMOS", "A1", "Acme"),
	}

	melhor, err := MelhorCorrespondencia(candidatos, "INSUMOS", "A1", "Acme")
	require.NoError(t, err)
	assert.Equal(t, int64(7), melhor.ID)
}

func TestMelhorCorrespondencia_EmpateDecideMaiorID(t *testing.T) {
	candidatos := []model.Produto{
		produto(3, "INSUMOS", "A1", "Acme"),
		produto(9, "INSUMOS", "A1", "Acme"),
		produto(6, "INSUMOS", "A1", "Acme"),
	}

	melhor, err := MelhorCorrespondencia(candidatos, "INSUMOS", "A1", "Acme")
	require.NoError(t, err)
	assert.Equal(t, int64(9), melhor.ID)
}

func TestMelhorCorrespondencia_SemCompativel(t *testing.T) {
	candidatos := []model.Produto{
		produto(1, "INSUMOS", "A1", "Other Co"),
	}

	melhor, err := MelhorCorrespondencia(candidatos, "INSUMOS", "A1", "Acme")
	require.NoError(t, err)
	assert.Nil(t, melhor)
}

func TestMelhorCorrespondencia_SemCandidatos(t *testing.T) {
	melhor, err := MelhorCorrespondencia(nil, "INSUMOS", "A1", "Acme")
	require.NoError(t, err)
	assert.Nil(t, melhor)
}
