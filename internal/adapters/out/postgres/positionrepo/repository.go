package positionrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPositionRepository implements PositionRepository using GORM.
type GormPositionRepository struct {
	db *gorm.DB
}

// NewGormPositionRepository creates a new GORM position repository.
func NewGormPositionRepository(db *gorm.DB) *GormPositionRepository {
	return &GormPositionRepository{db: db}
}

// Get retrieves the courier's last known position.
func (r *GormPositionRepository) Get(ctx context.Context, courierID kernel.UUID) (*courier.Position, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dto PositionDTO
	if err := r.db.WithContext(ctx).First(&dto, "courier_id = ?", courierID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier position", courierID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Upsert stores the position as a single INSERT ... ON CONFLICT statement.
// The conflict clause only fires when the incoming sample is strictly newer
// than the stored one, so an out-of-order sample matches zero rows and is
// reported as applied == false.
func (r *GormPositionRepository) Upsert(ctx context.Context, position *courier.Position) (bool, error) {
	if err := position.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(position)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "courier_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lat", "lng", "speed", "bearing", "accuracy", "sampled_at", "active_tracking",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "courier_positions.sampled_at < excluded.sampled_at"},
		}},
	}).Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// StopTracking clears the courier's active tracking flag. A courier that
// never reported is not an error; there is simply nothing to clear.
func (r *GormPositionRepository) StopTracking(ctx context.Context, courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&PositionDTO{}).
		Where("courier_id = ?", courierID.Bytes()).
		Update("active_tracking", false).
		Error
}
