package culto

import (
	"testing"
	"time"
)

func dia(ano int, mes time.Month, d int) time.Time {
	return time.Date(ano, mes, d, 0, 0, 0, 0, time.Local)
}

func TestContarOcorrenciasDoisDomingos(t *testing.T) {
	defs := []Definicao{{Nome: "Culto da Família", DiaSemana: time.Sunday, Ativo: true}}

	// 2024-03-01 (sexta) a 2024-03-11 (segunda): domingos 03 e 10
	got := ContarOcorrencias(defs, dia(2024, time.March, 1), dia(2024, time.March, 11), dia(2024, time.June, 1))
	if got != 2 {
		t.Fatalf("esperava 2 domingos, veio %d", got)
	}
}

func TestContarOcorrenciasCortaNoHoje(t *testing.T) {
	defs := []Definicao{{DiaSemana: time.Sunday, Ativo: true}}

	// fim pede até 2024-03-11, mas hoje é sábado 09: só o domingo 03 conta
	got := ContarOcorrencias(defs, dia(2024, time.March, 1), dia(2024, time.March, 11), dia(2024, time.March, 9))
	if got != 1 {
		t.Fatalf("domingo futuro não deveria contar, veio %d", got)
	}
}

func TestContarOcorrenciasHojeIncluso(t *testing.T) {
	defs := []Definicao{{DiaSemana: time.Sunday, Ativo: true}}

	// hoje é o próprio domingo: conta (corte é fim do dia de hoje)
	got := ContarOcorrencias(defs, dia(2024, time.March, 1), dia(2024, time.March, 11), dia(2024, time.March, 10))
	if got != 2 {
		t.Fatalf("domingo de hoje deveria contar, veio %d", got)
	}
}

func TestContarOcorrenciasIntervaloInvertido(t *testing.T) {
	defs := []Definicao{{DiaSemana: time.Sunday, Ativo: true}}

	got := ContarOcorrencias(defs, dia(2024, time.March, 10), dia(2024, time.March, 1), dia(2024, time.June, 1))
	if got != 0 {
		t.Fatalf("início depois do fim deveria dar 0, veio %d", got)
	}

	// inversão causada pelo corte em hoje também dá 0
	got = ContarOcorrencias(defs, dia(2024, time.March, 10), dia(2024, time.March, 20), dia(2024, time.March, 5))
	if got != 0 {
		t.Fatalf("corte antes do início deveria dar 0, veio %d", got)
	}
}

func TestContarOcorrenciasDoisCultosMesmoDia(t *testing.T) {
	defs := []Definicao{
		{Nome: "Manhã", DiaSemana: time.Sunday, Horario: "09:00", Ativo: true},
		{Nome: "Noite", DiaSemana: time.Sunday, Horario: "18:00", Ativo: true},
		{Nome: "Quarta", DiaSemana: time.Wednesday, Ativo: false},
	}

	// dois domingos no intervalo, dois cultos por domingo; quarta inativa
	got := ContarOcorrencias(defs, dia(2024, time.March, 1), dia(2024, time.March, 11), dia(2024, time.June, 1))
	if got != 4 {
		t.Fatalf("esperava 4 ocorrências, veio %d", got)
	}
}

func TestContarOcorrenciasSemDefinicaoAtiva(t *testing.T) {
	defs := []Definicao{{DiaSemana: time.Sunday, Ativo: false}}

	got := ContarOcorrencias(defs, dia(2024, time.March, 1), dia(2024, time.March, 31), dia(2024, time.June, 1))
	if got != 0 {
		t.Fatalf("sem definição ativa deveria dar 0, veio %d", got)
	}
}

func TestParseDataLocal(t *testing.T) {
	got, err := ParseData("2024-03-10")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if got.Weekday() != time.Sunday {
		t.Fatalf("2024-03-10 é domingo no calendário local, veio %v", got.Weekday())
	}
	if got.Location() != time.Local {
		t.Fatal("data deveria ser local, não UTC")
	}

	if _, err := ParseData("10/03/2024"); err == nil {
		t.Fatal("formato inválido deveria falhar")
	}
}
