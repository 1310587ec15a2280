package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/avisos-api/internal/model/aviso"
)

const avisoColumns = `id, titulo, mensagem, ativo, data_criacao, data_modificacao`

type pgAvisoRepository struct {
	pool *pgxpool.Pool
}

// NewPgAvisoRepository returns an AvisoRepository backed by PostgreSQL.
func NewPgAvisoRepository(pool *pgxpool.Pool) AvisoRepository {
	return &pgAvisoRepository{pool: pool}
}

func (r *pgAvisoRepository) Create(ctx context.Context, a *aviso.Aviso) error {
	const stmt = `
		INSERT INTO avisos (titulo, mensagem, ativo, data_criacao, data_modificacao)
		VALUES (@titulo, @mensagem, @ativo, @data_criacao, @data_modificacao)
		RETURNING id`

	err := r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"titulo":           a.Titulo,
		"mensagem":         a.Mensagem,
		"ativo":            a.Ativo,
		"data_criacao":     a.DataCriacao,
		"data_modificacao": a.DataModificacao,
	}).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to insert aviso: %w", err)
	}
	return nil
}

func (r *pgAvisoRepository) GetActiveByID(ctx context.Context, id int) (*aviso.Aviso, error) {
	stmt := `SELECT ` + avisoColumns + ` FROM avisos WHERE id = @id AND ativo = TRUE`

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to query aviso %d: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[aviso.Aviso])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAvisoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect aviso %d: %w", id, err)
	}
	return inUTC(a), nil
}

func (r *pgAvisoRepository) ListActive(ctx context.Context) ([]*aviso.Aviso, error) {
	stmt := `SELECT ` + avisoColumns + ` FROM avisos WHERE ativo = TRUE ORDER BY data_criacao DESC, id DESC`

	rows, err := r.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query avisos: %w", err)
	}

	avisos, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[aviso.Aviso])
	if err != nil {
		return nil, fmt.Errorf("failed to collect avisos: %w", err)
	}

	out := make([]*aviso.Aviso, 0, len(avisos))
	for _, a := range avisos {
		out = append(out, inUTC(a))
	}
	return out, nil
}

func (r *pgAvisoRepository) Update(ctx context.Context, a *aviso.Aviso) error {
	const stmt = `
		UPDATE avisos
		SET mensagem = @mensagem, ativo = @ativo, data_modificacao = @data_modificacao
		WHERE id = @id AND ativo = TRUE`

	tag, err := r.pool.Exec(ctx, stmt, pgx.NamedArgs{
		"id":               a.ID,
		"mensagem":         a.Mensagem,
		"ativo":            a.Ativo,
		"data_modificacao": a.DataModificacao,
	})
	if err != nil {
		return fmt.Errorf("failed to update aviso %d: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAvisoNotFound
	}
	return nil
}

func (r *pgAvisoRepository) ExistsActive(ctx context.Context, id int) (bool, error) {
	const stmt = `SELECT EXISTS (SELECT 1 FROM avisos WHERE id = @id AND ativo = TRUE)`

	var exists bool
	if err := r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check aviso %d: %w", id, err)
	}
	return exists, nil
}

// inUTC normalizes scanned timestamps, which pgx returns in the local zone.
func inUTC(a *aviso.Aviso) *aviso.Aviso {
	a.DataCriacao = a.DataCriacao.UTC()
	if a.DataModificacao != nil {
		t := a.DataModificacao.UTC()
		a.DataModificacao = &t
	}
	return a
}
