package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/midia-hub/saraalagoas-sub008/internal/config"
)

type stubRepo struct {
	posts map[uuid.UUID]Post
}

func newStubRepo() *stubRepo {
	return &stubRepo{posts: map[uuid.UUID]Post{}}
}

func (s *stubRepo) List(_ context.Context, status StatusPost) ([]Post, error) {
	var out []Post
	for _, p := range s.posts {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) Get(_ context.Context, id uuid.UUID) (Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return Post{}, errNaoEncontrado
	}
	return p, nil
}

func (s *stubRepo) Create(_ context.Context, p Post) (Post, error) {
	p.ID = uuid.New()
	p.CriadoEm = time.Now()
	s.posts[p.ID] = p
	return p, nil
}

func (s *stubRepo) Update(_ context.Context, p Post) error {
	if _, ok := s.posts[p.ID]; !ok {
		return errNaoEncontrado
	}
	s.posts[p.ID] = p
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.posts[id]; !ok {
		return errNaoEncontrado
	}
	delete(s.posts, id)
	return nil
}

func (s *stubRepo) ListVencidos(_ context.Context, ate time.Time) ([]Post, error) {
	var out []Post
	for _, p := range s.posts {
		if p.Status == PostAgendado && p.AgendadoPara != nil && !p.AgendadoPara.After(ate) {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubPublicador struct {
	falhar      bool
	publicados  int
}

func (s *stubPublicador) Publicar(_ context.Context, _ Post) (string, error) {
	if s.falhar {
		return "", errors.New("rede fora do ar")
	}
	s.publicados++
	return "ext-1", nil
}

func montarWorker(repo *stubRepo, pub Publicador) *Worker {
	return NewWorker(repo, pub, config.SocialConfig{Enabled: true, Interval: time.Minute}, zerolog.Nop())
}

func agendadoEm(repo *stubRepo, quando time.Time) Post {
	p := Post{ID: uuid.New(), Conteudo: "Culto de celebração domingo!", Status: PostAgendado, AgendadoPara: &quando}
	repo.posts[p.ID] = p
	return p
}

func TestRunOncePublicaVencidos(t *testing.T) {
	repo := newStubRepo()
	pub := &stubPublicador{}
	worker := montarWorker(repo, pub)

	passado := time.Now().Add(-time.Minute)
	futuro := time.Now().Add(time.Hour)
	vencido := agendadoEm(repo, passado)
	pendente := agendadoEm(repo, futuro)

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if pub.publicados != 1 {
		t.Fatalf("publicados = %d, esperado 1", pub.publicados)
	}
	if got := repo.posts[vencido.ID]; got.Status != PostPublicado || got.IDExterno == nil || *got.IDExterno != "ext-1" {
		t.Fatalf("post vencido não publicado: %+v", got)
	}
	if got := repo.posts[pendente.ID]; got.Status != PostAgendado {
		t.Fatalf("post futuro mudou de status: %s", got.Status)
	}
}

func TestRunOnceMarcaFalhaSemPararLote(t *testing.T) {
	repo := newStubRepo()
	worker := montarWorker(repo, &stubPublicador{falhar: true})

	vencido := agendadoEm(repo, time.Now().Add(-time.Minute))

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	got := repo.posts[vencido.ID]
	if got.Status != PostFalha {
		t.Fatalf("status = %s, esperado %s", got.Status, PostFalha)
	}
	if got.Erro == nil {
		t.Fatal("post falho sem mensagem de erro")
	}
}

func TestCriarSanitizaConteudo(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Criar(context.Background(), `<p>Venha ao culto</p><script>alert(1)</script>`, nil, nil)
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	if p.Conteudo != "<p>Venha ao culto</p>" {
		t.Fatalf("conteúdo sanitizado = %q", p.Conteudo)
	}
	if p.Status != PostRascunho {
		t.Fatalf("status = %s, esperado rascunho", p.Status)
	}
}

func TestCriarSomenteScriptViraValidacao(t *testing.T) {
	svc := NewService(newStubRepo())

	if _, err := svc.Criar(context.Background(), `<script>alert(1)</script>`, nil, nil); !errors.Is(err, ErrValidacao) {
		t.Fatalf("err = %v, esperado ErrValidacao", err)
	}
}

func TestAgendarNoPassadoRecusa(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Criar(context.Background(), "Aviso de ensaio do coral", nil, nil)
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	if _, err := svc.Agendar(context.Background(), p.ID, time.Now().Add(-time.Hour)); !errors.Is(err, ErrValidacao) {
		t.Fatalf("err = %v, esperado ErrValidacao", err)
	}
}

func TestExcluirPublicadoRecusa(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	agora := time.Now()
	p := Post{ID: uuid.New(), Conteudo: "ok", Status: PostPublicado, PublicadoEm: &agora}
	repo.posts[p.ID] = p

	if err := svc.Excluir(context.Background(), p.ID); !errors.Is(err, ErrJaPublicado) {
		t.Fatalf("err = %v, esperado ErrJaPublicado", err)
	}
}
