package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/internal/repository/unitofwork"
	"retention-flow-be/pkg/abtest"
)

type VariantService interface {
	// Assign returns the user's downsell variant and whether this call
	// created the assignment. The variant is sticky: once a row exists
	// the stored value is always returned.
	Assign(ctx context.Context, userId uuid.UUID, subscriptionId uuid.UUID) (abtest.Variant, bool, error)
}

type variantService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewVariantService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) VariantService {
	return &variantService{
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *variantService) Assign(ctx context.Context, userId uuid.UUID, subscriptionId uuid.UUID) (abtest.Variant, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.CancellationRepository()

	existing, err := repo.FindByUser(ctx, userId)
	if err == nil {
		return existing.DownsellVariant, false, nil
	}

	switch {
	case errors.Is(err, repoerr.ErrNotFound):
		// First visit; fall through to draw and persist.
	case errors.Is(err, repoerr.ErrUnavailable):
		// Store unreachable: the modal still needs a variant. Serve a
		// fresh draw without persisting; the next visit retries.
		drawn := abtest.Draw()
		s.log.Warn("variant_service", "serving unpersisted variant, store unavailable", map[string]interface{}{
			"user_id": userId.String(),
			"variant": string(drawn),
		})
		return drawn, true, nil
	default:
		// Unexpected failure: pin to the control arm so the experiment
		// data is not polluted by an arbitrary draw.
		s.log.Error("variant_service", "variant lookup failed, defaulting to control", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return abtest.VariantA, false, nil
	}

	drawn := abtest.Draw()
	row, inserted, err := repo.InsertIfAbsent(ctx, &entity.Cancellation{
		UserId:          userId,
		SubscriptionId:  subscriptionId,
		DownsellVariant: drawn,
	})
	if err != nil {
		if errors.Is(err, repoerr.ErrUnavailable) {
			s.log.Warn("variant_service", "serving unpersisted variant, store unavailable", map[string]interface{}{
				"user_id": userId.String(),
				"variant": string(drawn),
			})
			return drawn, true, nil
		}
		s.log.Error("variant_service", "variant insert failed, defaulting to control", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return abtest.VariantA, false, nil
	}

	// A concurrent first visit may have won the insert race; either way
	// the surviving row's variant is the assignment.
	return row.DownsellVariant, inserted, nil
}
