package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
	loadSql "github.com/siherrmann/influmatch/sql"
)

// InfluencersDBHandlerFunctions defines the interface for influencer database operations.
type InfluencersDBHandlerFunctions interface {
	UpsertInfluencerStats(stats *model.InfluencerStats) error
	SelectInfluencerStats(userRID uuid.UUID) (*model.InfluencerStats, error)
	SelectInfluencerSnapshots() ([]*model.InfluencerSnapshot, error)
	DeleteInfluencerStats(userRID uuid.UUID) error
}

// InfluencersDBHandler handles influencer-related database operations
type InfluencersDBHandler struct {
	db *helper.Database
}

// NewInfluencersDBHandler creates a new influencers database handler.
// It initializes the database connection and loads influencer-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewInfluencersDBHandler(db *helper.Database, force bool) (*InfluencersDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	influencersDbHandler := &InfluencersDBHandler{
		db: db,
	}

	err := loadSql.LoadInfluencersSql(influencersDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load influencers sql", err)
	}

	err = influencersDbHandler.CreateTable(model.FeatureDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized InfluencersDBHandler")

	return influencersDbHandler, nil
}

// CreateTable creates the 'influencer_stats' table in the database.
// If the table already exists, it does not create it again.
func (h *InfluencersDBHandler) CreateTable(featureDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_influencers($1);`, featureDim)
	if err != nil {
		log.Panicf("error initializing influencer_stats table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table influencer_stats")

	return nil
}

// UpsertInfluencerStats inserts or replaces the engagement stats of a user
func (h *InfluencersDBHandler) UpsertInfluencerStats(stats *model.InfluencerStats) error {
	if err := model.ValidateFeatures(stats.Features); err != nil {
		return helper.NewError("validate features", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_influencer_stats($1, $2, $3, $4, $5, $6, $7, $8)`,
		stats.UserRID,
		stats.Username,
		stats.Verified,
		stats.Professional,
		stats.Followers,
		stats.AvgLikes,
		stats.AvgComments,
		featureVector(stats.Features),
	)

	var features pgvector.Vector
	err := row.Scan(
		&stats.ID,
		&stats.UserRID,
		&stats.Username,
		&stats.Verified,
		&stats.Professional,
		&stats.Followers,
		&stats.AvgLikes,
		&stats.AvgComments,
		&features,
		&stats.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	stats.Features = featureSlice(features)

	return nil
}

// SelectInfluencerStats retrieves the engagement stats of a user
func (h *InfluencersDBHandler) SelectInfluencerStats(userRID uuid.UUID) (*model.InfluencerStats, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_influencer_stats($1)`,
		userRID,
	)

	stats := &model.InfluencerStats{}
	var features pgvector.Vector
	err := row.Scan(
		&stats.ID,
		&stats.UserRID,
		&stats.Username,
		&stats.Verified,
		&stats.Professional,
		&stats.Followers,
		&stats.AvgLikes,
		&stats.AvgComments,
		&features,
		&stats.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("scan", model.ErrNotFound)
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	stats.Features = featureSlice(features)

	return stats, nil
}

// SelectInfluencerSnapshots retrieves identity plus current feature vector of
// every influencer with stats. This is the training-time population.
func (h *InfluencersDBHandler) SelectInfluencerSnapshots() ([]*model.InfluencerSnapshot, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_influencer_snapshots()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var snapshots []*model.InfluencerSnapshot
	for rows.Next() {
		snapshot := &model.InfluencerSnapshot{}
		var features pgvector.Vector
		err := rows.Scan(
			&snapshot.UserRID,
			&snapshot.Username,
			&features,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		snapshot.Features = featureSlice(features)

		snapshots = append(snapshots, snapshot)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return snapshots, nil
}

// DeleteInfluencerStats deletes the stats row of a user
func (h *InfluencersDBHandler) DeleteInfluencerStats(userRID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_influencer_stats($1)`,
		userRID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
