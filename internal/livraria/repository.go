package livraria

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
	errSemEstoque    = errors.New("estoque insuficiente")
)

const dbTimeout = 5 * time.Second

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) ListProdutos(ctx context.Context, somenteAtivos bool) ([]Produto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `
		SELECT id, titulo, preco_cents, estoque, ativo, criado_em
		FROM livraria_produtos`
	if somenteAtivos {
		query += " WHERE ativo"
	}
	query += " ORDER BY titulo"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var produtos []Produto
	for rows.Next() {
		var p Produto
		if err := rows.Scan(&p.ID, &p.Titulo, &p.PrecoCents, &p.Estoque, &p.Ativo, &p.CriadoEm); err != nil {
			return nil, err
		}
		produtos = append(produtos, p)
	}
	return produtos, rows.Err()
}

func (r *Repository) GetProduto(ctx context.Context, id uuid.UUID) (Produto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var p Produto
	err := r.db.QueryRow(ctx, `
		SELECT id, titulo, preco_cents, estoque, ativo, criado_em
		FROM livraria_produtos
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Titulo, &p.PrecoCents, &p.Estoque, &p.Ativo, &p.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Produto{}, errNaoEncontrado
		}
		return Produto{}, err
	}
	return p, nil
}

func (r *Repository) CreateProduto(ctx context.Context, p Produto) (Produto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p.ID = uuid.New()
	p.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO livraria_produtos (id, titulo, preco_cents, estoque, ativo, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Titulo, p.PrecoCents, p.Estoque, p.Ativo, p.CriadoEm)
	if err != nil {
		return Produto{}, err
	}
	return p, nil
}

func (r *Repository) UpdateProduto(ctx context.Context, p Produto) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE livraria_produtos
		SET titulo = $2, preco_cents = $3, estoque = $4, ativo = $5
		WHERE id = $1`,
		p.ID, p.Titulo, p.PrecoCents, p.Estoque, p.Ativo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

// CreateVenda grava a venda e baixa o estoque numa única transação. O
// decremento condicional garante que duas vendas concorrentes não deixem o
// estoque negativo.
func (r *Repository) CreateVenda(ctx context.Context, v Venda) (Venda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	v.ID = uuid.New()
	v.CriadoEm = time.Now()

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, item := range v.Itens {
			tag, err := tx.Exec(ctx, `
				UPDATE livraria_produtos
				SET estoque = estoque - $2
				WHERE id = $1 AND ativo AND estoque >= $2`,
				item.ProdutoID, item.Quantidade)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return errSemEstoque
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO livraria_vendas (id, recibo, status, total_cents, cobranca_id, criado_em)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			v.ID, v.Recibo, string(v.Status), v.TotalCents, v.CobrancaID, v.CriadoEm); err != nil {
			return err
		}

		for _, item := range v.Itens {
			if _, err := tx.Exec(ctx, `
				INSERT INTO livraria_venda_itens (venda_id, produto_id, quantidade, preco_unit_cents)
				VALUES ($1, $2, $3, $4)`,
				v.ID, item.ProdutoID, item.Quantidade, item.PrecoUnitCents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Venda{}, err
	}
	return v, nil
}

func (r *Repository) GetVenda(ctx context.Context, id uuid.UUID) (Venda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var v Venda
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, recibo, status, total_cents, cobranca_id, criado_em
		FROM livraria_vendas
		WHERE id = $1`, id).
		Scan(&v.ID, &v.Recibo, &status, &v.TotalCents, &v.CobrancaID, &v.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Venda{}, errNaoEncontrado
		}
		return Venda{}, err
	}
	v.Status = StatusVenda(status)

	rows, err := r.db.Query(ctx, `
		SELECT produto_id, quantidade, preco_unit_cents
		FROM livraria_venda_itens
		WHERE venda_id = $1`, id)
	if err != nil {
		return Venda{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item ItemVenda
		if err := rows.Scan(&item.ProdutoID, &item.Quantidade, &item.PrecoUnitCents); err != nil {
			return Venda{}, err
		}
		v.Itens = append(v.Itens, item)
	}
	return v, rows.Err()
}

func (r *Repository) GetVendaPorCobranca(ctx context.Context, cobrancaID string) (Venda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id FROM livraria_vendas WHERE cobranca_id = $1`, cobrancaID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Venda{}, errNaoEncontrado
		}
		return Venda{}, err
	}
	return r.GetVenda(ctx, id)
}

func (r *Repository) UpdateCobranca(ctx context.Context, vendaID uuid.UUID, cobrancaID string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE livraria_vendas SET cobranca_id = $2 WHERE id = $1`, vendaID, cobrancaID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, vendaID uuid.UUID, status StatusVenda) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE livraria_vendas SET status = $2 WHERE id = $1`, vendaID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

// DevolverEstoque repõe as quantidades de uma venda estornada ou falhada.
func (r *Repository) DevolverEstoque(ctx context.Context, itens []ItemVenda) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, item := range itens {
			if _, err := tx.Exec(ctx, `
				UPDATE livraria_produtos SET estoque = estoque + $2 WHERE id = $1`,
				item.ProdutoID, item.Quantidade); err != nil {
				return err
			}
		}
		return nil
	})
}
