package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/mapper"
	"retention-flow-be/internal/model"
	"retention-flow-be/internal/repository/contract"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/internal/repository/specification"
)

type cancellationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CancellationMapper
}

func NewCancellationRepository(db *gorm.DB) contract.CancellationRepository {
	return &cancellationRepositoryImpl{db: db, mapper: mapper.NewCancellationMapper()}
}

// InsertIfAbsent relies on the unique index on user_id: DO NOTHING on
// conflict, then read back the surviving row. Two concurrent first visits
// both end up seeing the same variant.
func (r *cancellationRepositoryImpl) InsertIfAbsent(ctx context.Context, cancellation *entity.Cancellation) (*entity.Cancellation, bool, error) {
	m := r.mapper.ToModel(cancellation)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return nil, false, repoerr.Classify(result.Error)
	}

	inserted := result.RowsAffected > 0
	if inserted {
		return r.mapper.ToEntity(m), true, nil
	}

	existing, err := r.FindByUser(ctx, cancellation.UserId)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *cancellationRepositoryImpl) FindByUser(ctx context.Context, userId uuid.UUID) (*entity.Cancellation, error) {
	var m model.Cancellation
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repoerr.ErrNotFound
		}
		return nil, repoerr.Classify(err)
	}
	return r.mapper.ToEntity(&m), nil
}

// UpdateOutcome touches only the result fields. downsell_variant is set
// once at assignment and stays fixed.
func (r *cancellationRepositoryImpl) UpdateOutcome(ctx context.Context, cancellation *entity.Cancellation) error {
	result := r.db.WithContext(ctx).
		Model(&model.Cancellation{}).
		Where("user_id = ?", cancellation.UserId).
		Updates(map[string]interface{}{
			"reason":            cancellation.Reason,
			"amount":            cancellation.Amount,
			"feedback":          cancellation.Feedback,
			"accepted_downsell": cancellation.AcceptedDownsell,
		})
	if result.Error != nil {
		return repoerr.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return repoerr.ErrNotFound
	}
	return nil
}

func (r *cancellationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cancellation, error) {
	var models []*model.Cancellation
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, repoerr.Classify(err)
	}
	cancellations := make([]*entity.Cancellation, 0, len(models))
	for _, m := range models {
		cancellations = append(cancellations, r.mapper.ToEntity(m))
	}
	return cancellations, nil
}
