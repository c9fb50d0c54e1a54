package celula

import (
	"testing"
	"time"
)

func data(t *testing.T, ano int, mes time.Month, dia, hora, minuto int) time.Time {
	t.Helper()
	return time.Date(ano, mes, dia, hora, minuto, 0, 0, time.Local)
}

func TestProximaOcorrenciaSemanal(t *testing.T) {
	agenda := Agenda{DiaSemana: time.Sunday, Frequencia: FrequenciaSemanal}
	realizacao := data(t, 2024, time.March, 3, 19, 0)

	got := ProximaOcorrencia(agenda, realizacao)
	want := data(t, 2024, time.March, 10, 19, 0)
	if !got.Equal(want) {
		t.Fatalf("semanal: esperava %v, veio %v", want, got)
	}
}

func TestProximaOcorrenciaFrequenciaVaziaValeSemanal(t *testing.T) {
	agenda := Agenda{DiaSemana: time.Sunday}
	realizacao := data(t, 2024, time.March, 3, 19, 0)

	got := ProximaOcorrencia(agenda, realizacao)
	want := data(t, 2024, time.March, 10, 19, 0)
	if !got.Equal(want) {
		t.Fatalf("frequência vazia: esperava %v, veio %v", want, got)
	}
}

func TestProximaOcorrenciaQuinzenal(t *testing.T) {
	agenda := Agenda{DiaSemana: time.Friday, Frequencia: FrequenciaQuinzenal}
	realizacao := data(t, 2024, time.March, 1, 20, 30)

	got := ProximaOcorrencia(agenda, realizacao)
	want := data(t, 2024, time.March, 15, 20, 30)
	if !got.Equal(want) {
		t.Fatalf("quinzenal: esperava %v, veio %v", want, got)
	}
}

func TestProximaOcorrenciaMensalSempreMesSeguinte(t *testing.T) {
	// 2024-03-06 é quarta; ainda restam quartas em março, mas mensal
	// significa "mesma quarta do mês seguinte".
	agenda := Agenda{DiaSemana: time.Wednesday, Frequencia: FrequenciaMensal}
	realizacao := data(t, 2024, time.March, 6, 19, 30)

	got := ProximaOcorrencia(agenda, realizacao)
	want := data(t, 2024, time.April, 3, 19, 30)
	if !got.Equal(want) {
		t.Fatalf("mensal: esperava %v, veio %v", want, got)
	}
}

func TestProximaOcorrenciaMensalViradaDeAno(t *testing.T) {
	agenda := Agenda{DiaSemana: time.Sunday, Frequencia: FrequenciaMensal}
	realizacao := data(t, 2024, time.December, 15, 18, 0)

	got := ProximaOcorrencia(agenda, realizacao)
	want := data(t, 2025, time.January, 5, 18, 0)
	if !got.Equal(want) {
		t.Fatalf("virada de ano: esperava %v, veio %v", want, got)
	}
}

func TestProximaOcorrenciaAplicaHorario(t *testing.T) {
	agenda := Agenda{DiaSemana: time.Sunday, Horario: "20:15", Frequencia: FrequenciaSemanal}
	realizacao := data(t, 2024, time.March, 3, 19, 0)

	got := ProximaOcorrencia(agenda, realizacao)
	want := data(t, 2024, time.March, 10, 20, 15)
	if !got.Equal(want) {
		t.Fatalf("horário: esperava %v, veio %v", want, got)
	}
}

func TestProximaOcorrenciaHorarioMalformadoPreservaHora(t *testing.T) {
	realizacao := data(t, 2024, time.March, 3, 19, 45)

	for _, horario := range []string{"", "20h30", "vinte:30", "20", ":"} {
		agenda := Agenda{DiaSemana: time.Sunday, Horario: horario}
		got := ProximaOcorrencia(agenda, realizacao)
		want := data(t, 2024, time.March, 10, 19, 45)
		if !got.Equal(want) {
			t.Fatalf("horário %q: esperava %v, veio %v", horario, want, got)
		}
	}
}

func TestTravaEdicaoIgualProximaOcorrencia(t *testing.T) {
	agendas := []Agenda{
		{DiaSemana: time.Sunday, Frequencia: FrequenciaSemanal},
		{DiaSemana: time.Wednesday, Horario: "19:30", Frequencia: FrequenciaQuinzenal},
		{DiaSemana: time.Friday, Horario: "20:00", Frequencia: FrequenciaMensal},
	}
	datas := []time.Time{
		data(t, 2024, time.March, 3, 19, 0),
		data(t, 2024, time.June, 28, 20, 0),
		data(t, 2024, time.December, 31, 23, 59),
	}

	for _, agenda := range agendas {
		for _, d := range datas {
			if !TravaEdicao(agenda, d).Equal(ProximaOcorrencia(agenda, d)) {
				t.Fatalf("trava != próxima ocorrência para %+v em %v", agenda, d)
			}
		}
	}
}
