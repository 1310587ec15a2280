package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/avisos-api/internal/errs"
	"github.com/deppfellow/avisos-api/internal/model/aviso"
	"github.com/deppfellow/avisos-api/internal/repository"
)

// AvisoService implements the Aviso use cases. Payloads are expected to
// be validated already; the service only decides existence.
type AvisoService struct {
	repo repository.AvisoRepository
	now  func() time.Time
}

// NewAvisoService wires the service to its repository. now is the clock
// used for creation and modification stamps.
func NewAvisoService(repo repository.AvisoRepository, now func() time.Time) *AvisoService {
	return &AvisoService{repo: repo, now: now}
}

// notFound maps the repository sentinel onto the client-facing 404 and
// wraps anything else.
func notFound(err error, op string, id int) error {
	if errors.Is(err, repository.ErrAvisoNotFound) {
		return errs.NewNotFoundError(aviso.MsgNaoEncontrado)
	}
	return fmt.Errorf("%s aviso %d: %w", op, id, err)
}

func (s *AvisoService) CreateAviso(ctx context.Context, payload *aviso.CreateAvisoPayload) (*aviso.CreateAvisoResponse, error) {
	a := aviso.New(payload.Titulo, payload.Mensagem, s.now())

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create aviso: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int("aviso_id", a.ID).Msg("aviso created")

	return aviso.ToCreateResponse(a), nil
}

func (s *AvisoService) GetAviso(ctx context.Context, payload *aviso.GetAvisoPayload) (*aviso.AvisoResponse, error) {
	a, err := s.repo.GetActiveByID(ctx, payload.ID)
	if err != nil {
		return nil, notFound(err, "get", payload.ID)
	}
	return aviso.ToResponse(a), nil
}

// ListAvisos returns the active avisos, newest first. The slice is empty,
// never nil, when there are none.
func (s *AvisoService) ListAvisos(ctx context.Context, _ *aviso.ListAvisosPayload) ([]*aviso.AvisoResponse, error) {
	avisos, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list avisos: %w", err)
	}
	return aviso.ToResponses(avisos), nil
}

func (s *AvisoService) UpdateAviso(ctx context.Context, payload *aviso.UpdateAvisoPayload) (*aviso.UpdateAvisoResponse, error) {
	a, err := s.repo.GetActiveByID(ctx, payload.ID)
	if err != nil {
		return nil, notFound(err, "get", payload.ID)
	}

	a.SetMensagem(payload.Mensagem, s.now())

	// The write is guarded by ativo, so a delete that won the race since
	// the read surfaces here as not found.
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, notFound(err, "update", payload.ID)
	}

	zerolog.Ctx(ctx).Info().Int("aviso_id", a.ID).Msg("aviso updated")

	return aviso.ToUpdateResponse(a), nil
}

// DeleteAviso soft-deletes the aviso. Deleting twice is a not found.
func (s *AvisoService) DeleteAviso(ctx context.Context, payload *aviso.DeleteAvisoPayload) (bool, error) {
	a, err := s.repo.GetActiveByID(ctx, payload.ID)
	if err != nil {
		return false, notFound(err, "get", payload.ID)
	}

	a.Deactivate(s.now())

	if err := s.repo.Update(ctx, a); err != nil {
		return false, notFound(err, "delete", payload.ID)
	}

	zerolog.Ctx(ctx).Info().Int("aviso_id", a.ID).Msg("aviso deactivated")

	return true, nil
}

// Exists reports whether id names an active aviso.
func (s *AvisoService) Exists(ctx context.Context, id int) (bool, error) {
	exists, err := s.repo.ExistsActive(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check aviso %d: %w", id, err)
	}
	return exists, nil
}
