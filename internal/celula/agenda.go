package celula

import (
	"strconv"
	"strings"
	"time"
)

// Frequencia descreve o ritmo de reunião de uma célula.
type Frequencia string

const (
	FrequenciaSemanal   Frequencia = "semanal"
	FrequenciaQuinzenal Frequencia = "quinzenal"
	FrequenciaMensal    Frequencia = "mensal"
)

// Agenda é o padrão recorrente de reunião de uma célula. Configuração
// imutável: as calculadoras só leem.
type Agenda struct {
	DiaSemana  time.Weekday `json:"dia_semana"`
	Horario    string       `json:"horario,omitempty"` // "HH:MM", opcional
	Frequencia Frequencia   `json:"frequencia,omitempty"`
}

// ProximaOcorrencia calcula quando a reunião seguinte à realização
// informada deve acontecer.
//
// Semanal soma 7 dias, quinzenal soma 14. Mensal avança para o dia 1 do
// mês seguinte e varre dia a dia até casar o dia da semana da agenda —
// sempre cai no mês seguinte, mesmo que o dia da semana ainda ocorra no
// mês corrente depois da realização ("mensal" = mesmo dia de semana do
// mês seguinte, não "próxima semana limitada a uma por mês").
// Frequência desconhecida ou vazia vale semanal.
//
// O horário "HH:MM" da agenda, quando parseável como dois inteiros,
// substitui hora e minuto; ausente ou malformado, o horário da própria
// realização é preservado.
func ProximaOcorrencia(agenda Agenda, realizacao time.Time) time.Time {
	var proxima time.Time

	switch agenda.Frequencia {
	case FrequenciaQuinzenal:
		proxima = realizacao.AddDate(0, 0, 14)
	case FrequenciaMensal:
		proxima = time.Date(realizacao.Year(), realizacao.Month()+1, 1,
			realizacao.Hour(), realizacao.Minute(), realizacao.Second(), realizacao.Nanosecond(), realizacao.Location())
		for proxima.Weekday() != agenda.DiaSemana {
			proxima = proxima.AddDate(0, 0, 1)
		}
	default:
		proxima = realizacao.AddDate(0, 0, 7)
	}

	return aplicarHorario(proxima, agenda.Horario)
}

// TravaEdicao devolve o instante a partir do qual a realização fica
// fechada para edição: exatamente quando a próxima reunião começa.
// Chegou a hora da reunião seguinte, a chamada anterior é considerada
// final. Chamadores comparam now >= trava antes de aceitar mutações.
func TravaEdicao(agenda Agenda, realizacao time.Time) time.Time {
	return ProximaOcorrencia(agenda, realizacao)
}

func aplicarHorario(t time.Time, horario string) time.Time {
	partes := strings.SplitN(strings.TrimSpace(horario), ":", 2)
	if len(partes) != 2 {
		return t
	}
	hora, err := strconv.Atoi(strings.TrimSpace(partes[0]))
	if err != nil {
		return t
	}
	minuto, err := strconv.Atoi(strings.TrimSpace(partes[1]))
	if err != nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hora, minuto, 0, 0, t.Location())
}
