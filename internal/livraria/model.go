package livraria

import (
	"time"

	"github.com/google/uuid"
)

// StatusVenda acompanha o ciclo de vida no PDV.
type StatusVenda string

const (
	VendaAguardandoPagamento StatusVenda = "aguardando_pagamento"
	VendaPaga                StatusVenda = "paga"
	VendaFalha               StatusVenda = "falha"
	VendaEstornada           StatusVenda = "estornada"
)

// Produto é um item do catálogo da livraria.
type Produto struct {
	ID         uuid.UUID `json:"id"`
	Titulo     string    `json:"titulo"`
	PrecoCents int64     `json:"preco_cents"`
	Estoque    int       `json:"estoque"`
	Ativo      bool      `json:"ativo"`
	CriadoEm   time.Time `json:"criado_em"`
}

// ItemVenda registra um produto vendido com o preço praticado no momento.
type ItemVenda struct {
	ProdutoID      uuid.UUID `json:"produto_id"`
	Quantidade     int       `json:"quantidade"`
	PrecoUnitCents int64     `json:"preco_unit_cents"`
}

// Venda é o registro de uma operação no PDV. Recibo é um ULID; a ordenação
// lexicográfica segue a ordem de emissão.
type Venda struct {
	ID         uuid.UUID   `json:"id"`
	Recibo     string      `json:"recibo"`
	Status     StatusVenda `json:"status"`
	TotalCents int64       `json:"total_cents"`
	CobrancaID *string     `json:"cobranca_id,omitempty"`
	Itens      []ItemVenda `json:"itens"`
	CriadoEm   time.Time   `json:"criado_em"`
}
