package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrNaoEncontrado = errors.New("post não encontrado")
	ErrValidacao     = errors.New("dados inválidos")
	ErrJaPublicado   = errors.New("post já publicado")
)

// PostRepository abstrai a persistência das publicações.
type PostRepository interface {
	List(ctx context.Context, status StatusPost) ([]Post, error)
	Get(ctx context.Context, id uuid.UUID) (Post, error)
	Create(ctx context.Context, p Post) (Post, error)
	Update(ctx context.Context, p Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListVencidos(ctx context.Context, ate time.Time) ([]Post, error)
}

type Service struct {
	repo       PostRepository
	sanitizador *bluemonday.Policy
	agora      func() time.Time
}

func NewService(repo PostRepository) *Service {
	return &Service{
		repo:        repo,
		sanitizador: bluemonday.UGCPolicy(),
		agora:       time.Now,
	}
}

func (s *Service) Listar(ctx context.Context, status StatusPost) ([]Post, error) {
	posts, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

func (s *Service) Obter(ctx context.Context, id uuid.UUID) (Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Post{}, traduzirErro(err)
	}
	return p, nil
}

// Criar grava o post como rascunho ou já agendado. O conteúdo passa pelo
// sanitizador antes de persistir; o que entra sujo não sai na rede.
func (s *Service) Criar(ctx context.Context, conteudo string, imagemURL *string, agendadoPara *time.Time) (Post, error) {
	limpo := strings.TrimSpace(s.sanitizador.Sanitize(conteudo))
	if limpo == "" {
		return Post{}, ErrValidacao
	}

	p := Post{
		Conteudo:  limpo,
		ImagemURL: imagemURL,
		Status:    PostRascunho,
	}
	if agendadoPara != nil {
		if agendadoPara.Before(s.agora()) {
			return Post{}, ErrValidacao
		}
		p.Status = PostAgendado
		p.AgendadoPara = agendadoPara
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Atualizar(ctx context.Context, id uuid.UUID, conteudo string, imagemURL *string) (Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Post{}, traduzirErro(err)
	}
	if p.Status == PostPublicado {
		return Post{}, ErrJaPublicado
	}

	limpo := strings.TrimSpace(s.sanitizador.Sanitize(conteudo))
	if limpo == "" {
		return Post{}, ErrValidacao
	}
	p.Conteudo = limpo
	p.ImagemURL = imagemURL
	if err := s.repo.Update(ctx, p); err != nil {
		return Post{}, traduzirErro(err)
	}
	return p, nil
}

// Agendar marca o horário de publicação de um rascunho ou reagenda uma falha.
func (s *Service) Agendar(ctx context.Context, id uuid.UUID, quando time.Time) (Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Post{}, traduzirErro(err)
	}
	if p.Status == PostPublicado {
		return Post{}, ErrJaPublicado
	}
	if quando.Before(s.agora()) {
		return Post{}, ErrValidacao
	}

	p.Status = PostAgendado
	p.AgendadoPara = &quando
	p.Erro = nil
	if err := s.repo.Update(ctx, p); err != nil {
		return Post{}, traduzirErro(err)
	}
	return p, nil
}

func (s *Service) Excluir(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return traduzirErro(err)
	}
	if p.Status == PostPublicado {
		return ErrJaPublicado
	}
	return traduzirErro(s.repo.Delete(ctx, id))
}

func traduzirErro(err error) error {
	if errors.Is(err, errNaoEncontrado) {
		return ErrNaoEncontrado
	}
	return err
}
