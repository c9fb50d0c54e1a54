package celula

import "github.com/google/uuid"

// CelulasElite devolve o conjunto de células que batem a régua "elite"
// no mês de referência. Agregação pura sobre realizações já carregadas;
// recalculada sob demanda, nada é persistido.
//
// Filtra por igualdade exata da chave de mês ("2006-01"), não por
// contenção de intervalo. Por célula exige, juntos:
//   - pelo menos uma reunião no mês;
//   - média de PD >= 10, somando apenas realizações não rejeitadas
//     (pendente e aprovado contam, só a rejeição explícita exclui);
//   - presença de visitante, pela lista de visitantes não vazia OU por
//     alguma presença marcada como visitante (OR inclusivo).
//
// Sem crédito parcial e sem normalização por tamanho da célula.
func CelulasElite(realizacoes []Realizacao, mesReferencia string) map[uuid.UUID]struct{} {
	type acumulado struct {
		reunioes      int
		somaPD        float64
		contagemPD    int
		teveVisitante bool
	}

	porCelula := make(map[uuid.UUID]*acumulado)

	for _, r := range realizacoes {
		if r.MesReferencia != mesReferencia {
			continue
		}

		acc, ok := porCelula[r.CelulaID]
		if !ok {
			acc = &acumulado{}
			porCelula[r.CelulaID] = acc
		}

		acc.reunioes++

		if r.StatusPD != PDRejeitado {
			acc.somaPD += r.ValorPD
			acc.contagemPD++
		}

		if len(r.Visitantes) > 0 {
			acc.teveVisitante = true
		} else {
			for _, p := range r.Presencas {
				if p.Tipo == PresencaVisitante {
					acc.teveVisitante = true
					break
				}
			}
		}
	}

	elite := make(map[uuid.UUID]struct{})
	for celulaID, acc := range porCelula {
		if acc.reunioes == 0 || !acc.teveVisitante {
			continue
		}
		if acc.contagemPD == 0 {
			continue
		}
		if acc.somaPD/float64(acc.contagemPD) >= mediaElitePD {
			elite[celulaID] = struct{}{}
		}
	}
	return elite
}

const mediaElitePD = 10.0
