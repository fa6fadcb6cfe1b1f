// Package repositories implements the persistence interfaces of the
// application layer over PostgreSQL.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

// DetectionRepository stores and reads detection records. It implements
// valuation.DetectionSink and valuation.DetectionSource. The classification,
// features, and valuation payloads are stored as JSONB so the breakdown
// survives storage losslessly; the hot query columns are denormalised.
type DetectionRepository struct {
	db     *sql.DB
	logger logging.Logger
}

// NewDetectionRepository constructs a DetectionRepository.
func NewDetectionRepository(db *sql.DB, logger logging.Logger) *DetectionRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DetectionRepository{db: db, logger: logger.Named("detectionrepo")}
}

const insertDetectionSQL = `
INSERT INTO detections (
    id, source_id, user_agent, locator, occurred_at,
    actor, is_bot, estimated_value,
    classification, features, valuation
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

// Store persists one detection. Re-storing the same ID is a no-op, which
// makes the worker's re-persist path idempotent.
func (r *DetectionRepository) Store(ctx context.Context, d *valuation.Detection) error {
	classification, err := json.Marshal(d.Classification)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode classification")
	}
	features, err := json.Marshal(d.Features)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode features")
	}
	val, err := json.Marshal(d.Valuation)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode valuation")
	}

	_, err = r.db.ExecContext(ctx, insertDetectionSQL,
		d.ID, d.SourceID, d.UserAgent, d.Locator, d.OccurredAt,
		d.Classification.ActorName, d.Classification.IsBot,
		d.Valuation.EstimatedValue, classification, features, val,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert detection")
	}
	return nil
}

const listWindowSQL = `
SELECT id, source_id, user_agent, locator, occurred_at,
       classification, features, valuation
FROM detections
WHERE occurred_at >= $1 AND occurred_at <= $2
ORDER BY occurred_at ASC`

// ListWindow returns the detections whose occurrence time falls within
// [from, to], oldest first.
func (r *DetectionRepository) ListWindow(ctx context.Context, from, to time.Time) ([]valuation.Detection, error) {
	rows, err := r.db.QueryContext(ctx, listWindowSQL, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query detections")
	}
	defer rows.Close()

	var out []valuation.Detection
	for rows.Next() {
		var (
			d              valuation.Detection
			id             uuid.UUID
			classification []byte
			features       []byte
			val            []byte
		)
		if err := rows.Scan(&id, &d.SourceID, &d.UserAgent, &d.Locator, &d.OccurredAt,
			&classification, &features, &val); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan detection row")
		}
		d.ID = id
		if err := json.Unmarshal(classification, &d.Classification); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode classification")
		}
		if err := json.Unmarshal(features, &d.Features); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode features")
		}
		if err := json.Unmarshal(val, &d.Valuation); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode valuation")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate detections")
	}
	return out, nil
}

const purgeSQL = `DELETE FROM detections WHERE occurred_at < $1`

// PurgeBefore deletes detections older than the cutoff, returning the
// number of rows removed.
func (r *DetectionRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeSQL, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to purge detections")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read purge count")
	}
	r.logger.Info("purged detections",
		logging.Int64("rows", n),
		logging.String("cutoff", cutoff.Format(time.RFC3339)),
	)
	return n, nil
}
