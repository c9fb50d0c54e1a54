package galeria

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/storage"
	"github.com/midia-hub/saraalagoas-sub008/internal/util"
)

var (
	ErrNaoEncontrado = errors.New("registro não encontrado")
	ErrValidacao     = errors.New("dados inválidos")
)

var tiposAceitos = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// GaleriaRepository abstrai a persistência de álbuns e fotos.
type GaleriaRepository interface {
	ListAlbuns(ctx context.Context, somentePublicados bool) ([]Album, error)
	GetAlbum(ctx context.Context, id uuid.UUID) (Album, error)
	CreateAlbum(ctx context.Context, a Album) (Album, error)
	UpdateAlbum(ctx context.Context, a Album) error
	DeleteAlbum(ctx context.Context, id uuid.UUID) error
	CreateFoto(ctx context.Context, f Foto) (Foto, error)
	GetFoto(ctx context.Context, id uuid.UUID) (Foto, error)
	DeleteFoto(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     GaleriaRepository
	uploader storage.Uploader
}

func NewService(repo GaleriaRepository, uploader storage.Uploader) *Service {
	return &Service{repo: repo, uploader: uploader}
}

func (s *Service) ListarAlbuns(ctx context.Context, somentePublicados bool) ([]Album, error) {
	albuns, err := s.repo.ListAlbuns(ctx, somentePublicados)
	if err != nil {
		return nil, err
	}
	if albuns == nil {
		albuns = []Album{}
	}
	return albuns, nil
}

func (s *Service) ObterAlbum(ctx context.Context, id uuid.UUID) (Album, error) {
	a, err := s.repo.GetAlbum(ctx, id)
	if err != nil {
		return Album{}, traduzirErro(err)
	}
	return a, nil
}

// ObterAlbumPublicado é a variante do site público; álbum não publicado se
// comporta como inexistente.
func (s *Service) ObterAlbumPublicado(ctx context.Context, id uuid.UUID) (Album, error) {
	a, err := s.ObterAlbum(ctx, id)
	if err != nil {
		return Album{}, err
	}
	if !a.Publicado {
		return Album{}, ErrNaoEncontrado
	}
	return a, nil
}

func (s *Service) CriarAlbum(ctx context.Context, a Album) (Album, error) {
	a.Titulo = strings.TrimSpace(a.Titulo)
	if a.Titulo == "" {
		return Album{}, ErrValidacao
	}
	return s.repo.CreateAlbum(ctx, a)
}

func (s *Service) AtualizarAlbum(ctx context.Context, a Album) (Album, error) {
	a.Titulo = strings.TrimSpace(a.Titulo)
	if a.Titulo == "" {
		return Album{}, ErrValidacao
	}
	if err := s.repo.UpdateAlbum(ctx, a); err != nil {
		return Album{}, traduzirErro(err)
	}
	return a, nil
}

func (s *Service) ExcluirAlbum(ctx context.Context, id uuid.UUID) error {
	album, err := s.repo.GetAlbum(ctx, id)
	if err != nil {
		return traduzirErro(err)
	}
	for _, foto := range album.Fotos {
		if err := s.uploader.Delete(ctx, foto.Chave); err != nil {
			log.Warn().Err(err).Str("chave", foto.Chave).Msg("galeria: falha ao remover objeto")
		}
	}
	return traduzirErro(s.repo.DeleteAlbum(ctx, id))
}

// EnviarFoto sobe o binário para o storage e grava o registro.
func (s *Service) EnviarFoto(ctx context.Context, albumID uuid.UUID, corpo []byte, contentType string, legenda *string) (Foto, error) {
	ext, ok := tiposAceitos[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok || len(corpo) == 0 {
		return Foto{}, ErrValidacao
	}
	if _, err := s.repo.GetAlbum(ctx, albumID); err != nil {
		return Foto{}, traduzirErro(err)
	}

	chave := path.Join("galeria", albumID.String(), util.NewULID()+ext)
	resultado, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:          chave,
		Body:         corpo,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return Foto{}, fmt.Errorf("galeria: upload: %w", err)
	}

	return s.repo.CreateFoto(ctx, Foto{
		AlbumID: albumID,
		Chave:   chave,
		URL:     resultado.URL,
		Legenda: legenda,
	})
}

func (s *Service) ExcluirFoto(ctx context.Context, id uuid.UUID) error {
	foto, err := s.repo.GetFoto(ctx, id)
	if err != nil {
		return traduzirErro(err)
	}
	if err := s.uploader.Delete(ctx, foto.Chave); err != nil {
		log.Warn().Err(err).Str("chave", foto.Chave).Msg("galeria: falha ao remover objeto")
	}
	return traduzirErro(s.repo.DeleteFoto(ctx, id))
}

func traduzirErro(err error) error {
	if errors.Is(err, errNaoEncontrado) {
		return ErrNaoEncontrado
	}
	return err
}
