package model

import "time"

// Familia é o dicionário de famílias de produto. O rótulo vindo da tabela de
// preço é reconciliado contra este dicionário; entradas novas são criadas na
// primeira ocorrência com Nome = Rotulo (curadoria posterior pode divergir).
//
// A chave é composta: IDs numéricos são alocados em blocos POR tipo de lista
// (max + passo, não +1), deixando lacunas para inserções manuais entre lotes.
// Referências a partir do catálogo são fracas — lookup por (tipo_lista, id).
type Familia struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	TipoLista string `gorm:"primaryKey;uniqueIndex:idx_familias_rotulo,priority:1"`
	Rotulo    string `gorm:"not null;uniqueIndex:idx_familias_rotulo,priority:2"`
	Nome      string `gorm:"not null"`
	Ativo     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Familia) TableName() string { return "familias" }
