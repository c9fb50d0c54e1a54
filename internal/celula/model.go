package celula

import (
	"time"

	"github.com/google/uuid"
)

// StatusPD é o ciclo de aprovação do valor de PD de uma realização.
type StatusPD string

const (
	PDPendente  StatusPD = "pendente"
	PDAprovado  StatusPD = "aprovado"
	PDRejeitado StatusPD = "rejeitado"
)

// TipoPresenca distingue membro de visitante na chamada.
type TipoPresenca string

const (
	PresencaMembro    TipoPresenca = "membro"
	PresencaVisitante TipoPresenca = "visitante"
)

// Celula representa um pequeno grupo com agenda recorrente.
type Celula struct {
	ID        uuid.UUID  `json:"id"`
	Nome      string     `json:"nome"`
	LiderID   *uuid.UUID `json:"lider_id,omitempty"`
	Anfitriao string     `json:"anfitriao,omitempty"`
	Endereco  string     `json:"endereco,omitempty"`
	Agenda    Agenda     `json:"agenda"`
	Ativa     bool       `json:"ativa"`
	CriadoEm  time.Time  `json:"criado_em"`
}

// Presenca é um registro de chamada de uma realização.
type Presenca struct {
	PessoaID uuid.UUID    `json:"pessoa_id"`
	Nome     string       `json:"nome,omitempty"`
	Tipo     TipoPresenca `json:"tipo"`
}

// Realizacao é uma ocorrência concreta e datada da reunião da célula.
// O valor de PD transita pendente→aprovado|rejeitado por quem tem o
// código nomeado; a edição fecha quando a próxima reunião chega.
type Realizacao struct {
	ID            uuid.UUID  `json:"id"`
	CelulaID      uuid.UUID  `json:"celula_id"`
	Data          time.Time  `json:"data"`
	MesReferencia string     `json:"mes_referencia"` // "2006-01"
	ValorPD       float64    `json:"valor_pd"`
	StatusPD      StatusPD   `json:"pd_status"`
	Presencas     []Presenca `json:"presencas,omitempty"`
	Visitantes    []string   `json:"visitantes,omitempty"`
	CriadoEm      time.Time  `json:"criado_em"`
}
