package celula

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/midia-hub/saraalagoas-sub008/internal/db"
)

var (
	errNaoEncontrado = errors.New("não encontrado")
)

const dbTimeout = 3 * time.Second

// Repository fornece acesso aos dados de células e realizações.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListCelulas(ctx context.Context) ([]Celula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, lider_id, anfitriao, endereco, dia_semana, horario, frequencia, ativa, criado_em
		FROM celulas
		ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var celulas []Celula
	for rows.Next() {
		c, err := scanCelula(rows)
		if err != nil {
			return nil, err
		}
		celulas = append(celulas, c)
	}
	return celulas, rows.Err()
}

func (r *Repository) GetCelula(ctx context.Context, id uuid.UUID) (Celula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT id, nome, lider_id, anfitriao, endereco, dia_semana, horario, frequencia, ativa, criado_em
		FROM celulas
		WHERE id = $1`, id)

	c, err := scanCelula(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Celula{}, errNaoEncontrado
		}
		return Celula{}, err
	}
	return c, nil
}

func (r *Repository) CreateCelula(ctx context.Context, c Celula) (Celula, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c.ID = uuid.New()
	c.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO celulas (id, nome, lider_id, anfitriao, endereco, dia_semana, horario, frequencia, ativa, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Nome, c.LiderID, c.Anfitriao, c.Endereco,
		int(c.Agenda.DiaSemana), nullIfEmpty(c.Agenda.Horario), nullIfEmpty(string(c.Agenda.Frequencia)), c.Ativa, c.CriadoEm)
	if err != nil {
		return Celula{}, err
	}
	return c, nil
}

func (r *Repository) UpdateCelula(ctx context.Context, c Celula) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE celulas
		SET nome = $2, lider_id = $3, anfitriao = $4, endereco = $5,
		    dia_semana = $6, horario = $7, frequencia = $8, ativa = $9
		WHERE id = $1`,
		c.ID, c.Nome, c.LiderID, c.Anfitriao, c.Endereco,
		int(c.Agenda.DiaSemana), nullIfEmpty(c.Agenda.Horario), nullIfEmpty(string(c.Agenda.Frequencia)), c.Ativa)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) DeleteCelula(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM celulas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

// CreateRealizacao grava a realização com presenças e visitantes na mesma
// transação.
func (r *Repository) CreateRealizacao(ctx context.Context, realizacao Realizacao) (Realizacao, error) {
	realizacao.ID = uuid.New()
	realizacao.CriadoEm = time.Now()
	if realizacao.StatusPD == "" {
		realizacao.StatusPD = PDPendente
	}

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO realizacoes (id, celula_id, data, mes_referencia, valor_pd, pd_status, criado_em)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			realizacao.ID, realizacao.CelulaID, realizacao.Data, realizacao.MesReferencia,
			realizacao.ValorPD, string(realizacao.StatusPD), realizacao.CriadoEm)
		if err != nil {
			return err
		}
		return r.gravarChamada(ctx, tx, realizacao)
	})
	if err != nil {
		return Realizacao{}, err
	}
	return realizacao, nil
}

// UpdateRealizacao substitui os dados editáveis e regrava a chamada.
func (r *Repository) UpdateRealizacao(ctx context.Context, realizacao Realizacao) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE realizacoes
			SET data = $2, mes_referencia = $3, valor_pd = $4
			WHERE id = $1`,
			realizacao.ID, realizacao.Data, realizacao.MesReferencia, realizacao.ValorPD)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNaoEncontrado
		}

		if _, err := tx.Exec(ctx, `DELETE FROM realizacao_presencas WHERE realizacao_id = $1`, realizacao.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM realizacao_visitantes WHERE realizacao_id = $1`, realizacao.ID); err != nil {
			return err
		}
		return r.gravarChamada(ctx, tx, realizacao)
	})
}

func (r *Repository) gravarChamada(ctx context.Context, tx pgx.Tx, realizacao Realizacao) error {
	for _, p := range realizacao.Presencas {
		if _, err := tx.Exec(ctx, `
			INSERT INTO realizacao_presencas (realizacao_id, pessoa_id, tipo)
			VALUES ($1, $2, $3)`,
			realizacao.ID, p.PessoaID, string(p.Tipo)); err != nil {
			return err
		}
	}
	for _, nome := range realizacao.Visitantes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO realizacao_visitantes (realizacao_id, nome)
			VALUES ($1, $2)`,
			realizacao.ID, nome); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetRealizacao(ctx context.Context, id uuid.UUID) (Realizacao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var realizacao Realizacao
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, celula_id, data, mes_referencia, valor_pd, pd_status, criado_em
		FROM realizacoes
		WHERE id = $1`, id).
		Scan(&realizacao.ID, &realizacao.CelulaID, &realizacao.Data, &realizacao.MesReferencia,
			&realizacao.ValorPD, &status, &realizacao.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Realizacao{}, errNaoEncontrado
		}
		return Realizacao{}, err
	}
	realizacao.StatusPD = StatusPD(status)

	if err := r.carregarChamada(ctx, map[uuid.UUID]*Realizacao{realizacao.ID: &realizacao}); err != nil {
		return Realizacao{}, err
	}
	return realizacao, nil
}

// ListRealizacoesPorMes devolve as realizações do mês já com presenças e
// visitantes carregados, prontas para a agregação elite.
func (r *Repository) ListRealizacoesPorMes(ctx context.Context, mesReferencia string) ([]Realizacao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, celula_id, data, mes_referencia, valor_pd, pd_status, criado_em
		FROM realizacoes
		WHERE mes_referencia = $1
		ORDER BY data`, mesReferencia)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var realizacoes []Realizacao
	indice := make(map[uuid.UUID]*Realizacao)
	for rows.Next() {
		var realizacao Realizacao
		var status string
		if err := rows.Scan(&realizacao.ID, &realizacao.CelulaID, &realizacao.Data, &realizacao.MesReferencia,
			&realizacao.ValorPD, &status, &realizacao.CriadoEm); err != nil {
			return nil, err
		}
		realizacao.StatusPD = StatusPD(status)
		realizacoes = append(realizacoes, realizacao)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range realizacoes {
		indice[realizacoes[i].ID] = &realizacoes[i]
	}
	if err := r.carregarChamada(ctx, indice); err != nil {
		return nil, err
	}
	return realizacoes, nil
}

func (r *Repository) carregarChamada(ctx context.Context, indice map[uuid.UUID]*Realizacao) error {
	if len(indice) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(indice))
	for id := range indice {
		ids = append(ids, id)
	}

	rows, err := r.db.Query(ctx, `
		SELECT rp.realizacao_id, rp.pessoa_id, COALESCE(p.nome, ''), rp.tipo
		FROM realizacao_presencas rp
		LEFT JOIN pessoas p ON p.id = rp.pessoa_id
		WHERE rp.realizacao_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var realizacaoID uuid.UUID
		var p Presenca
		var tipo string
		if err := rows.Scan(&realizacaoID, &p.PessoaID, &p.Nome, &tipo); err != nil {
			return err
		}
		p.Tipo = TipoPresenca(tipo)
		if realizacao, ok := indice[realizacaoID]; ok {
			realizacao.Presencas = append(realizacao.Presencas, p)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	visitantes, err := r.db.Query(ctx, `
		SELECT realizacao_id, nome
		FROM realizacao_visitantes
		WHERE realizacao_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer visitantes.Close()
	for visitantes.Next() {
		var realizacaoID uuid.UUID
		var nome string
		if err := visitantes.Scan(&realizacaoID, &nome); err != nil {
			return err
		}
		if realizacao, ok := indice[realizacaoID]; ok {
			realizacao.Visitantes = append(realizacao.Visitantes, nome)
		}
	}
	return visitantes.Err()
}

func (r *Repository) UpdateStatusPD(ctx context.Context, id uuid.UUID, status StatusPD) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE realizacoes SET pd_status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

type celulaScanner interface {
	Scan(dest ...any) error
}

func scanCelula(row celulaScanner) (Celula, error) {
	var c Celula
	var diaSemana int
	var horario, frequencia *string
	if err := row.Scan(&c.ID, &c.Nome, &c.LiderID, &c.Anfitriao, &c.Endereco,
		&diaSemana, &horario, &frequencia, &c.Ativa, &c.CriadoEm); err != nil {
		return Celula{}, err
	}
	c.Agenda.DiaSemana = time.Weekday(diaSemana)
	if horario != nil {
		c.Agenda.Horario = *horario
	}
	if frequencia != nil {
		c.Agenda.Frequencia = Frequencia(*frequencia)
	}
	return c, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
