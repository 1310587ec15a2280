package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/deppfellow/avisos-api/internal/model/aviso"
)

// avisoRow is the gorm mapping of the avisos table. The schema itself
// comes from the embedded migrations, not from AutoMigrate.
type avisoRow struct {
	ID              int        `gorm:"column:id;primaryKey;autoIncrement"`
	Titulo          string     `gorm:"column:titulo;size:200;not null"`
	Mensagem        string     `gorm:"column:mensagem;size:1000;not null"`
	Ativo           bool       `gorm:"column:ativo;not null"`
	DataCriacao     time.Time  `gorm:"column:data_criacao;not null"`
	DataModificacao *time.Time `gorm:"column:data_modificacao"`
}

func (avisoRow) TableName() string { return "avisos" }

func toRow(a *aviso.Aviso) *avisoRow {
	return &avisoRow{
		ID:              a.ID,
		Titulo:          a.Titulo,
		Mensagem:        a.Mensagem,
		Ativo:           a.Ativo,
		DataCriacao:     a.DataCriacao,
		DataModificacao: a.DataModificacao,
	}
}

func (r *avisoRow) toAviso() *aviso.Aviso {
	return inUTC(&aviso.Aviso{
		ID:              r.ID,
		Titulo:          r.Titulo,
		Mensagem:        r.Mensagem,
		Ativo:           r.Ativo,
		DataCriacao:     r.DataCriacao,
		DataModificacao: r.DataModificacao,
	})
}

type gormAvisoRepository struct {
	db *gorm.DB
}

// NewGormAvisoRepository returns an AvisoRepository backed by gorm.
func NewGormAvisoRepository(db *gorm.DB) AvisoRepository {
	return &gormAvisoRepository{db: db}
}

func (r *gormAvisoRepository) Create(ctx context.Context, a *aviso.Aviso) error {
	row := toRow(a)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert aviso: %w", err)
	}
	a.ID = row.ID
	return nil
}

func (r *gormAvisoRepository) GetActiveByID(ctx context.Context, id int) (*aviso.Aviso, error) {
	var row avisoRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND ativo = ?", id, true).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAvisoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query aviso %d: %w", id, err)
	}
	return row.toAviso(), nil
}

func (r *gormAvisoRepository) ListActive(ctx context.Context) ([]*aviso.Aviso, error) {
	var rows []avisoRow
	err := r.db.WithContext(ctx).
		Where("ativo = ?", true).
		Order("data_criacao DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query avisos: %w", err)
	}

	out := make([]*aviso.Aviso, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toAviso())
	}
	return out, nil
}

func (r *gormAvisoRepository) Update(ctx context.Context, a *aviso.Aviso) error {
	// A map so that ativo=false is written; gorm skips zero values in structs.
	res := r.db.WithContext(ctx).
		Model(&avisoRow{}).
		Where("id = ? AND ativo = ?", a.ID, true).
		Updates(map[string]any{
			"mensagem":         a.Mensagem,
			"ativo":            a.Ativo,
			"data_modificacao": a.DataModificacao,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update aviso %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAvisoNotFound
	}
	return nil
}

func (r *gormAvisoRepository) ExistsActive(ctx context.Context, id int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&avisoRow{}).
		Where("id = ? AND ativo = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check aviso %d: %w", id, err)
	}
	return count > 0, nil
}
