package culto

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errNaoEncontrado = errors.New("não encontrado")
)

const dbTimeout = 3 * time.Second

// RegistroPresenca é a contagem de presentes de um culto realizado.
type RegistroPresenca struct {
	ID        uuid.UUID `json:"id"`
	CultoID   uuid.UUID `json:"culto_id"`
	Data      time.Time `json:"data"`
	Presentes int       `json:"presentes"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Repository fornece acesso às definições de culto e presenças.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListDefinicoes(ctx context.Context) ([]Definicao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, dia_semana, horario, ativo
		FROM cultos
		ORDER BY dia_semana, horario`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []Definicao
	for rows.Next() {
		var def Definicao
		var diaSemana int
		var horario *string
		if err := rows.Scan(&def.ID, &def.Nome, &diaSemana, &horario, &def.Ativo); err != nil {
			return nil, err
		}
		def.DiaSemana = time.Weekday(diaSemana)
		if horario != nil {
			def.Horario = *horario
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (r *Repository) CreateDefinicao(ctx context.Context, def Definicao) (Definicao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	def.ID = uuid.New()
	var horario *string
	if def.Horario != "" {
		horario = &def.Horario
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO cultos (id, nome, dia_semana, horario, ativo)
		VALUES ($1, $2, $3, $4, $5)`,
		def.ID, def.Nome, int(def.DiaSemana), horario, def.Ativo)
	if err != nil {
		return Definicao{}, err
	}
	return def, nil
}

func (r *Repository) UpdateDefinicao(ctx context.Context, def Definicao) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var horario *string
	if def.Horario != "" {
		horario = &def.Horario
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE cultos SET nome = $2, dia_semana = $3, horario = $4, ativo = $5
		WHERE id = $1`,
		def.ID, def.Nome, int(def.DiaSemana), horario, def.Ativo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) DeleteDefinicao(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM cultos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) CreatePresenca(ctx context.Context, registro RegistroPresenca) (RegistroPresenca, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	registro.ID = uuid.New()
	registro.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO culto_presencas (id, culto_id, data, presentes, criado_em)
		VALUES ($1, $2, $3, $4, $5)`,
		registro.ID, registro.CultoID, registro.Data, registro.Presentes, registro.CriadoEm)
	if err != nil {
		if errosDeChave(err) {
			return RegistroPresenca{}, errNaoEncontrado
		}
		return RegistroPresenca{}, err
	}
	return registro, nil
}

// ContarPresencas soma os registros de presença no intervalo fechado.
func (r *Repository) ContarPresencas(ctx context.Context, inicio, fim time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(COUNT(*), 0)
		FROM culto_presencas
		WHERE data >= $1 AND data <= $2`,
		inicio, fim).Scan(&total)
	return total, err
}

func errosDeChave(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		// 23503 foreign_key_violation
		return pgErr.SQLState() == "23503"
	}
	return false
}
