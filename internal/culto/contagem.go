package culto

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Definicao é um horário recorrente de culto. Mais de uma definição pode
// cair no mesmo dia da semana (dois cultos no mesmo domingo).
type Definicao struct {
	ID        uuid.UUID    `json:"id"`
	Nome      string       `json:"nome"`
	DiaSemana time.Weekday `json:"dia_semana"`
	Horario   string       `json:"horario,omitempty"`
	Ativo     bool         `json:"ativo"`
}

// ErrDataInvalida indica string de data fora do formato "2006-01-02".
var ErrDataInvalida = errors.New("data inválida")

// ParseData interpreta "2006-01-02" como data de calendário local.
// Parsear como UTC deslocaria o dia em fusos negativos; aqui o dia da
// semana precisa ser o do calendário local da igreja.
func ParseData(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, ErrDataInvalida
	}
	return t, nil
}

// ContarOcorrencias conta quantos cultos individuais deveriam ter
// acontecido no intervalo [inicio, fim], dia a dia.
//
// O fim efetivo é limitado a hoje: cultos regulares que ainda não
// chegaram nunca entram na conta. Se após o corte o fim ficar antes do
// início, o resultado é 0, sem erro. Cada dia do intervalo soma o número
// de definições ativas cujo dia da semana casa com o do dia.
func ContarOcorrencias(defs []Definicao, inicio, fim, hoje time.Time) int {
	porDia := make(map[time.Weekday]int)
	for _, def := range defs {
		if def.Ativo {
			porDia[def.DiaSemana]++
		}
	}
	if len(porDia) == 0 {
		return 0
	}

	inicioDia := truncarDia(inicio)
	fimDia := truncarDia(fim)
	hojeDia := truncarDia(hoje)
	if fimDia.After(hojeDia) {
		fimDia = hojeDia
	}
	if fimDia.Before(inicioDia) {
		return 0
	}

	total := 0
	for d := inicioDia; !d.After(fimDia); d = d.AddDate(0, 0, 1) {
		total += porDia[d.Weekday()]
	}
	return total
}

func truncarDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
