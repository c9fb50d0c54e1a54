package celula

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubRepo struct {
	celulas       map[uuid.UUID]Celula
	realizacoes   map[uuid.UUID]Realizacao
	statusGravado *StatusPD
	atualizada    *Realizacao
}

func novoStubRepo() *stubRepo {
	return &stubRepo{
		celulas:     make(map[uuid.UUID]Celula),
		realizacoes: make(map[uuid.UUID]Realizacao),
	}
}

func (s *stubRepo) ListCelulas(ctx context.Context) ([]Celula, error) {
	var out []Celula
	for _, c := range s.celulas {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubRepo) GetCelula(ctx context.Context, id uuid.UUID) (Celula, error) {
	c, ok := s.celulas[id]
	if !ok {
		return Celula{}, errNaoEncontrado
	}
	return c, nil
}

func (s *stubRepo) CreateCelula(ctx context.Context, c Celula) (Celula, error) {
	c.ID = uuid.New()
	s.celulas[c.ID] = c
	return c, nil
}

func (s *stubRepo) UpdateCelula(ctx context.Context, c Celula) error {
	if _, ok := s.celulas[c.ID]; !ok {
		return errNaoEncontrado
	}
	s.celulas[c.ID] = c
	return nil
}

func (s *stubRepo) DeleteCelula(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.celulas[id]; !ok {
		return errNaoEncontrado
	}
	delete(s.celulas, id)
	return nil
}

func (s *stubRepo) CreateRealizacao(ctx context.Context, realizacao Realizacao) (Realizacao, error) {
	realizacao.ID = uuid.New()
	s.realizacoes[realizacao.ID] = realizacao
	return realizacao, nil
}

func (s *stubRepo) UpdateRealizacao(ctx context.Context, realizacao Realizacao) error {
	if _, ok := s.realizacoes[realizacao.ID]; !ok {
		return errNaoEncontrado
	}
	s.atualizada = &realizacao
	s.realizacoes[realizacao.ID] = realizacao
	return nil
}

func (s *stubRepo) GetRealizacao(ctx context.Context, id uuid.UUID) (Realizacao, error) {
	realizacao, ok := s.realizacoes[id]
	if !ok {
		return Realizacao{}, errNaoEncontrado
	}
	return realizacao, nil
}

func (s *stubRepo) ListRealizacoesPorMes(ctx context.Context, mes string) ([]Realizacao, error) {
	var out []Realizacao
	for _, realizacao := range s.realizacoes {
		if realizacao.MesReferencia == mes {
			out = append(out, realizacao)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatusPD(ctx context.Context, id uuid.UUID, status StatusPD) error {
	realizacao, ok := s.realizacoes[id]
	if !ok {
		return errNaoEncontrado
	}
	realizacao.StatusPD = status
	s.realizacoes[id] = realizacao
	s.statusGravado = &status
	return nil
}

func montarCenario(t *testing.T) (*Service, *stubRepo, uuid.UUID, uuid.UUID) {
	t.Helper()
	repo := novoStubRepo()
	service := NewService(repo, nil)

	celulaID := uuid.New()
	repo.celulas[celulaID] = Celula{
		ID:     celulaID,
		Nome:   "Célula Esperança",
		Agenda: Agenda{DiaSemana: time.Sunday, Horario: "19:00", Frequencia: FrequenciaSemanal},
		Ativa:  true,
	}

	realizacaoID := uuid.New()
	repo.realizacoes[realizacaoID] = Realizacao{
		ID:            realizacaoID,
		CelulaID:      celulaID,
		Data:          time.Date(2024, time.March, 3, 19, 0, 0, 0, time.Local),
		MesReferencia: "2024-03",
		ValorPD:       12,
		StatusPD:      PDPendente,
	}

	return service, repo, celulaID, realizacaoID
}

func TestEditarRealizacaoDentroDaJanela(t *testing.T) {
	service, repo, _, realizacaoID := montarCenario(t)
	// a próxima reunião seria 2024-03-10 19:00
	service.agora = func() time.Time {
		return time.Date(2024, time.March, 8, 10, 0, 0, 0, time.Local)
	}

	err := service.EditarRealizacao(context.Background(), Realizacao{ID: realizacaoID, ValorPD: 15}, false)
	if err != nil {
		t.Fatalf("edição dentro da janela deveria passar: %v", err)
	}
	if repo.atualizada == nil || repo.atualizada.ValorPD != 15 {
		t.Fatal("realização não foi atualizada")
	}
}

func TestEditarRealizacaoForaDaJanela(t *testing.T) {
	service, _, _, realizacaoID := montarCenario(t)
	// próxima reunião já começou
	service.agora = func() time.Time {
		return time.Date(2024, time.March, 10, 19, 0, 0, 0, time.Local)
	}

	err := service.EditarRealizacao(context.Background(), Realizacao{ID: realizacaoID, ValorPD: 15}, false)
	if err != ErrEdicaoBloqueada {
		t.Fatalf("esperava ErrEdicaoBloqueada, veio %v", err)
	}
}

func TestEditarRealizacaoLiberadaPorAprovador(t *testing.T) {
	service, repo, _, realizacaoID := montarCenario(t)
	service.agora = func() time.Time {
		return time.Date(2024, time.April, 1, 12, 0, 0, 0, time.Local)
	}

	err := service.EditarRealizacao(context.Background(), Realizacao{ID: realizacaoID, ValorPD: 20}, true)
	if err != nil {
		t.Fatalf("aprovador deveria editar fora da janela: %v", err)
	}
	if repo.atualizada == nil || repo.atualizada.ValorPD != 20 {
		t.Fatal("realização não foi atualizada pelo aprovador")
	}
}

func TestAprovarPDPendente(t *testing.T) {
	service, repo, _, realizacaoID := montarCenario(t)

	if err := service.AprovarPD(context.Background(), realizacaoID); err != nil {
		t.Fatalf("aprovar pendente deveria passar: %v", err)
	}
	if repo.statusGravado == nil || *repo.statusGravado != PDAprovado {
		t.Fatal("status não transicionou para aprovado")
	}
}

func TestAprovarPDJaAvaliado(t *testing.T) {
	service, repo, _, realizacaoID := montarCenario(t)
	realizacao := repo.realizacoes[realizacaoID]
	realizacao.StatusPD = PDAprovado
	repo.realizacoes[realizacaoID] = realizacao

	if err := service.RejeitarPD(context.Background(), realizacaoID); err != ErrTransicaoPD {
		t.Fatalf("reavaliação deveria falhar com ErrTransicaoPD, veio %v", err)
	}
}

func TestRegistrarRealizacaoDerivaMes(t *testing.T) {
	service, _, celulaID, _ := montarCenario(t)

	criada, err := service.RegistrarRealizacao(context.Background(), Realizacao{
		CelulaID: celulaID,
		Data:     time.Date(2024, time.May, 5, 19, 0, 0, 0, time.Local),
		ValorPD:  10,
	})
	if err != nil {
		t.Fatalf("registrar deveria passar: %v", err)
	}
	if criada.MesReferencia != "2024-05" {
		t.Fatalf("mês de referência deveria derivar da data, veio %q", criada.MesReferencia)
	}
	if criada.StatusPD != PDPendente {
		t.Fatalf("realização nova deveria nascer pendente, veio %q", criada.StatusPD)
	}
}

func TestCelulasEliteDoMes(t *testing.T) {
	service, repo, celulaID, realizacaoID := montarCenario(t)
	realizacao := repo.realizacoes[realizacaoID]
	realizacao.Visitantes = []string{"Ana"}
	repo.realizacoes[realizacaoID] = realizacao

	celulas, err := service.CelulasEliteDoMes(context.Background(), "2024-03")
	if err != nil {
		t.Fatalf("elite deveria calcular: %v", err)
	}
	if len(celulas) != 1 || celulas[0].ID != celulaID {
		t.Fatalf("esperava a célula do cenário como elite, veio %+v", celulas)
	}
}
