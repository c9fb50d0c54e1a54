package celula

import (
	"testing"

	"github.com/google/uuid"
)

func TestCelulasEliteMediaInclusiva(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 8, StatusPD: PDAprovado, Visitantes: []string{"Ana"}},
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 12, StatusPD: PDAprovado},
	}

	elite := CelulasElite(realizacoes, "2024-03")
	if _, ok := elite[celulaID]; !ok {
		t.Fatal("média 10 é inclusiva, célula deveria ser elite")
	}
}

func TestCelulasEliteRejeitadoForaDaMedia(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 8, StatusPD: PDAprovado, Visitantes: []string{"Ana"}},
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 12, StatusPD: PDRejeitado},
	}

	// rejeitado sai da soma e da contagem: média = 8, abaixo da régua
	elite := CelulasElite(realizacoes, "2024-03")
	if _, ok := elite[celulaID]; ok {
		t.Fatal("valor rejeitado não deveria contar na média")
	}
}

func TestCelulasElitePendenteContaNaMedia(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 15, StatusPD: PDPendente, Visitantes: []string{"Ana"}},
	}

	elite := CelulasElite(realizacoes, "2024-03")
	if _, ok := elite[celulaID]; !ok {
		t.Fatal("pendente conta na média; só rejeição explícita exclui")
	}
}

func TestCelulasEliteExigeVisitante(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 20, StatusPD: PDAprovado},
	}

	elite := CelulasElite(realizacoes, "2024-03")
	if _, ok := elite[celulaID]; ok {
		t.Fatal("sem visitante não há elite, independente da média")
	}
}

func TestCelulasEliteVisitantePorPresenca(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{
			CelulaID:      celulaID,
			MesReferencia: "2024-03",
			ValorPD:       20,
			StatusPD:      PDAprovado,
			Presencas: []Presenca{
				{PessoaID: uuid.New(), Tipo: PresencaMembro},
				{PessoaID: uuid.New(), Tipo: PresencaVisitante},
			},
		},
	}

	// qualquer um dos dois sinais basta: lista de visitantes OU presença
	// marcada como visitante
	elite := CelulasElite(realizacoes, "2024-03")
	if _, ok := elite[celulaID]; !ok {
		t.Fatal("presença tipo visitante deveria contar como visitante")
	}
}

func TestCelulasEliteFiltraMesExato(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: celulaID, MesReferencia: "2024-02", ValorPD: 50, StatusPD: PDAprovado, Visitantes: []string{"Ana"}},
	}

	elite := CelulasElite(realizacoes, "2024-03")
	if len(elite) != 0 {
		t.Fatal("realização de outro mês não deveria contar")
	}
}

func TestCelulasEliteTodosRejeitados(t *testing.T) {
	celulaID := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: celulaID, MesReferencia: "2024-03", ValorPD: 30, StatusPD: PDRejeitado, Visitantes: []string{"Ana"}},
	}

	elite := CelulasElite(realizacoes, "2024-03")
	if len(elite) != 0 {
		t.Fatal("sem valor válido não há média que alcance a régua")
	}
}

func TestCelulasEliteVariasCelulas(t *testing.T) {
	boa := uuid.New()
	fraca := uuid.New()
	realizacoes := []Realizacao{
		{CelulaID: boa, MesReferencia: "2024-03", ValorPD: 10, StatusPD: PDAprovado, Visitantes: []string{"Ana"}},
		{CelulaID: fraca, MesReferencia: "2024-03", ValorPD: 5, StatusPD: PDAprovado, Visitantes: []string{"Bia"}},
	}

	elite := CelulasElite(realizacoes, "2024-03")
	if _, ok := elite[boa]; !ok {
		t.Fatal("célula na régua deveria entrar")
	}
	if _, ok := elite[fraca]; ok {
		t.Fatal("célula abaixo da régua não deveria entrar")
	}
	if len(elite) != 1 {
		t.Fatalf("esperava 1 célula elite, veio %d", len(elite))
	}
}
