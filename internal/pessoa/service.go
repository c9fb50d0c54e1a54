package pessoa

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNaoEncontrada = errors.New("pessoa não encontrada")
	ErrValidacao     = errors.New("dados inválidos")
)

// PessoaRepository abstrai a persistência de pessoas.
type PessoaRepository interface {
	List(ctx context.Context, filtro FiltroBusca) ([]Pessoa, int, error)
	Get(ctx context.Context, id uuid.UUID) (Pessoa, error)
	Create(ctx context.Context, p Pessoa) (Pessoa, error)
	Update(ctx context.Context, p Pessoa) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo PessoaRepository
}

func NewService(repo PessoaRepository) *Service {
	return &Service{repo: repo}
}

// PaginaPessoas agrupa o resultado paginado da busca.
type PaginaPessoas struct {
	Pessoas []Pessoa `json:"pessoas"`
	Total   int      `json:"total"`
	Limite  int      `json:"limite"`
	Offset  int      `json:"offset"`
}

func (s *Service) Buscar(ctx context.Context, filtro FiltroBusca) (PaginaPessoas, error) {
	if filtro.Limite <= 0 || filtro.Limite > 100 {
		filtro.Limite = 50
	}
	if filtro.Offset < 0 {
		filtro.Offset = 0
	}
	pessoas, total, err := s.repo.List(ctx, filtro)
	if err != nil {
		return PaginaPessoas{}, err
	}
	if pessoas == nil {
		pessoas = []Pessoa{}
	}
	return PaginaPessoas{Pessoas: pessoas, Total: total, Limite: filtro.Limite, Offset: filtro.Offset}, nil
}

func (s *Service) Obter(ctx context.Context, id uuid.UUID) (Pessoa, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errNaoEncontrada) {
			return Pessoa{}, ErrNaoEncontrada
		}
		return Pessoa{}, err
	}
	return p, nil
}

func (s *Service) Criar(ctx context.Context, p Pessoa) (Pessoa, error) {
	if err := validar(&p); err != nil {
		return Pessoa{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Atualizar(ctx context.Context, p Pessoa) (Pessoa, error) {
	if err := validar(&p); err != nil {
		return Pessoa{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, errNaoEncontrada) {
			return Pessoa{}, ErrNaoEncontrada
		}
		return Pessoa{}, err
	}
	return p, nil
}

func (s *Service) Excluir(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errNaoEncontrada) {
			return ErrNaoEncontrada
		}
		return err
	}
	return nil
}

func validar(p *Pessoa) error {
	p.Nome = strings.TrimSpace(p.Nome)
	if p.Nome == "" {
		return ErrValidacao
	}
	switch p.Tipo {
	case "":
		p.Tipo = TipoMembro
	case TipoMembro, TipoVisitante:
	default:
		return ErrValidacao
	}
	return nil
}
