package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rescuelink/dispatch/internal/pkg/constants"
	"github.com/rescuelink/dispatch/internal/pkg/database"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/internal/utils"
	dispatchsvc "github.com/rescuelink/dispatch/services/dispatch"
)

const locationCellPrecision = 6

// ResponderRepo implements the responder directory interface. Profiles are
// durable in Postgres; live locations and the availability pool live in Redis
// geo sets keyed per service type.
type ResponderRepo struct {
	cfg         *models.Config
	db          *sqlx.DB
	redisClient *database.RedisClient
}

// NewResponderRepository creates a new responder repository
func NewResponderRepository(
	cfg *models.Config,
	db *sqlx.DB,
	redisClient *database.RedisClient,
) *ResponderRepo {
	return &ResponderRepo{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
	}
}

// GetResponder retrieves a responder profile by ID
func (r *ResponderRepo) GetResponder(ctx context.Context, responderID uuid.UUID) (*models.Responder, error) {
	query := `
		SELECT
			id, service_type, availability,
			(location[0])::float8 as longitude,
			(location[1])::float8 as latitude,
			last_updated
		FROM responders
		WHERE id = $1
	`

	var dto models.ResponderDTO
	err := r.db.QueryRowContext(ctx, query, responderID).Scan(
		&dto.ID, &dto.ServiceType, &dto.Availability,
		&dto.Longitude, &dto.Latitude,
		&dto.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dispatchsvc.ErrResponderNotFound
		}
		return nil, fmt.Errorf("failed to get responder: %w", err)
	}

	return dto.ToResponder(), nil
}

// UpdateLocation persists a responder location ping to Postgres and refreshes
// the Redis geo index so proximity queries see the new position.
func (r *ResponderRepo) UpdateLocation(ctx context.Context, responderID uuid.UUID, location models.Location) error {
	responder, err := r.GetResponder(ctx, responderID)
	if err != nil {
		return err
	}

	updateQuery := `
		UPDATE responders
		SET location = point($1, $2), last_updated = $3
		WHERE id = $4
	`
	if _, err := r.db.ExecContext(ctx, updateQuery, location.Longitude, location.Latitude, time.Now(), responderID); err != nil {
		return fmt.Errorf("failed to update responder location: %w", err)
	}

	geoKey := fmt.Sprintf(constants.KeyResponderGeo, responder.ServiceType)
	if err := r.redisClient.GeoAdd(ctx, geoKey, location.Longitude, location.Latitude, responderID.String()); err != nil {
		return fmt.Errorf("failed to update geo index: %w", err)
	}

	locationKey := fmt.Sprintf(constants.KeyResponderLocation, responderID.String())
	locationData := map[string]interface{}{
		constants.FieldLongitude:   location.Longitude,
		constants.FieldLatitude:    location.Latitude,
		constants.FieldTimestamp:   time.Now().Unix(),
		constants.FieldGeohash:     utils.EncodeLocation(location, locationCellPrecision),
		constants.FieldServiceType: string(responder.ServiceType),
	}
	if err := r.redisClient.HMSet(ctx, locationKey, locationData); err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}

	return nil
}

// SetAvailability flips the durable availability column and keeps the Redis
// pool membership in sync: only available responders are pool members.
func (r *ResponderRepo) SetAvailability(ctx context.Context, responderID uuid.UUID, availability models.Availability) error {
	responder, err := r.GetResponder(ctx, responderID)
	if err != nil {
		return err
	}

	updateQuery := `
		UPDATE responders
		SET availability = $1, last_updated = $2
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, updateQuery, availability, time.Now(), responderID); err != nil {
		return fmt.Errorf("failed to update responder availability: %w", err)
	}

	if availability == models.AvailabilityAvailable {
		return r.MarkAvailable(ctx, responderID, responder.ServiceType)
	}
	return r.MarkBusy(ctx, responderID, responder.ServiceType)
}

// FindCandidates returns available responders of the service type within
// radiusKm of the location, nearest first, ties broken by id ascending.
func (r *ResponderRepo) FindCandidates(ctx context.Context, location models.Location, serviceType models.ServiceType, radiusKm float64, limit int) ([]models.Candidate, error) {
	geoKey := fmt.Sprintf(constants.KeyResponderGeo, serviceType)
	availableKey := fmt.Sprintf(constants.KeyAvailableResponder, serviceType)

	results, err := r.redisClient.GeoRadius(ctx, geoKey, location.Longitude, location.Latitude, radiusKm, "km")
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby responders: %w", err)
	}

	origin := utils.GeoPointFromLocation(location)
	candidates := make([]models.Candidate, 0, len(results))
	for _, result := range results {
		isMember, err := r.redisClient.SIsMember(ctx, availableKey, result.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check responder availability: %w", err)
		}
		if !isMember {
			continue
		}

		id, err := uuid.Parse(result.Name)
		if err != nil {
			continue
		}

		candidateLocation := models.Location{
			Longitude: result.Longitude,
			Latitude:  result.Latitude,
			Timestamp: time.Now(),
		}
		// Redis is the index and filter; the reported distance is recomputed
		// with the same haversine used for ETAs.
		candidates = append(candidates, models.Candidate{
			ID:         id,
			Location:   candidateLocation,
			DistanceKm: utils.CalculateDistance(origin, utils.GeoPointFromLocation(candidateLocation)),
		})
	}

	// Deterministic order: nearest first, equal distances by id ascending.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// MarkBusy removes a responder from the Redis availability pool
func (r *ResponderRepo) MarkBusy(ctx context.Context, responderID uuid.UUID, serviceType models.ServiceType) error {
	availableKey := fmt.Sprintf(constants.KeyAvailableResponder, serviceType)
	if err := r.redisClient.SRem(ctx, availableKey, responderID.String()); err != nil {
		return fmt.Errorf("failed to remove from available set: %w", err)
	}
	return nil
}

// MarkAvailable returns a responder to the Redis availability pool
func (r *ResponderRepo) MarkAvailable(ctx context.Context, responderID uuid.UUID, serviceType models.ServiceType) error {
	availableKey := fmt.Sprintf(constants.KeyAvailableResponder, serviceType)
	if err := r.redisClient.SAdd(ctx, availableKey, responderID.String()); err != nil {
		return fmt.Errorf("failed to add to available set: %w", err)
	}
	return nil
}
