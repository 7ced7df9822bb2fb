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

// BrandsDBHandlerFunctions defines the interface for brand database operations.
type BrandsDBHandlerFunctions interface {
	InsertBrand(brand *model.Brand) error
	SelectBrand(id int64) (*model.Brand, error)
	SelectBrandByRID(rid uuid.UUID) (*model.Brand, error)
	SelectAllBrands() ([]*model.Brand, error)
	DeleteBrand(id int64) error
	UpsertBrandStats(stats *model.BrandStats) error
	SelectBrandStats(brandID int64) (*model.BrandStats, error)
	SelectBrandSnapshots() ([]*model.BrandFeatureSnapshot, error)
}

// BrandsDBHandler handles brand-related database operations
type BrandsDBHandler struct {
	db *helper.Database
}

// NewBrandsDBHandler creates a new brands database handler.
// It initializes the database connection and loads brand-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewBrandsDBHandler(db *helper.Database, force bool) (*BrandsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	brandsDbHandler := &BrandsDBHandler{
		db: db,
	}

	err := loadSql.LoadBrandsSql(brandsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load brands sql", err)
	}

	err = brandsDbHandler.CreateTable(model.FeatureDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized BrandsDBHandler")

	return brandsDbHandler, nil
}

// CreateTable creates the 'brands' and 'brand_stats' tables in the database.
// If the tables already exist, it does not create them again.
func (h *BrandsDBHandler) CreateTable(featureDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_brands($1);`, featureDim)
	if err != nil {
		log.Panicf("error initializing brands tables: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables brands and brand_stats")

	return nil
}

// InsertBrand inserts a new brand
func (h *BrandsDBHandler) InsertBrand(brand *model.Brand) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_brand($1, $2, $3)`,
		brand.Name,
		brand.Sector,
		brand.Location,
	)

	err := row.Scan(
		&brand.ID,
		&brand.RID,
		&brand.Name,
		&brand.Sector,
		&brand.Location,
		&brand.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectBrand retrieves a brand by ID
func (h *BrandsDBHandler) SelectBrand(id int64) (*model.Brand, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_brand($1)`,
		id,
	)

	brand := &model.Brand{}
	err := row.Scan(
		&brand.ID,
		&brand.RID,
		&brand.Name,
		&brand.Sector,
		&brand.Location,
		&brand.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("scan", model.ErrNotFound)
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return brand, nil
}

// SelectBrandByRID retrieves a brand by its public RID
func (h *BrandsDBHandler) SelectBrandByRID(rid uuid.UUID) (*model.Brand, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_brand_by_rid($1)`,
		rid,
	)

	brand := &model.Brand{}
	err := row.Scan(
		&brand.ID,
		&brand.RID,
		&brand.Name,
		&brand.Sector,
		&brand.Location,
		&brand.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("scan", model.ErrNotFound)
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return brand, nil
}

// SelectAllBrands retrieves all brands ordered by ID
func (h *BrandsDBHandler) SelectAllBrands() ([]*model.Brand, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_brands()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var brands []*model.Brand
	for rows.Next() {
		brand := &model.Brand{}
		err := rows.Scan(
			&brand.ID,
			&brand.RID,
			&brand.Name,
			&brand.Sector,
			&brand.Location,
			&brand.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		brands = append(brands, brand)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return brands, nil
}

// DeleteBrand deletes a brand by ID; its stats and ledger rows cascade
func (h *BrandsDBHandler) DeleteBrand(id int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_brand($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// UpsertBrandStats inserts or replaces the engagement stats of a brand
func (h *BrandsDBHandler) UpsertBrandStats(stats *model.BrandStats) error {
	if err := model.ValidateFeatures(stats.Features); err != nil {
		return helper.NewError("validate features", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_brand_stats($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		stats.BrandID,
		stats.Username,
		stats.Verified,
		stats.Professional,
		stats.Followers,
		stats.AvgLikes,
		stats.AvgComments,
		featureVector(stats.Features),
		stats.HighestPost,
	)

	var features pgvector.Vector
	err := row.Scan(
		&stats.ID,
		&stats.BrandID,
		&stats.Username,
		&stats.Verified,
		&stats.Professional,
		&stats.Followers,
		&stats.AvgLikes,
		&stats.AvgComments,
		&features,
		&stats.HighestPost,
		&stats.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	stats.Features = featureSlice(features)

	return nil
}

// SelectBrandStats retrieves the engagement stats of a brand
func (h *BrandsDBHandler) SelectBrandStats(brandID int64) (*model.BrandStats, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_brand_stats($1)`,
		brandID,
	)

	stats := &model.BrandStats{}
	var features pgvector.Vector
	err := row.Scan(
		&stats.ID,
		&stats.BrandID,
		&stats.Username,
		&stats.Verified,
		&stats.Professional,
		&stats.Followers,
		&stats.AvgLikes,
		&stats.AvgComments,
		&features,
		&stats.HighestPost,
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

// SelectBrandSnapshots retrieves identity plus current feature vector of every
// brand that has stats. This is the population the matcher and trainer see.
func (h *BrandsDBHandler) SelectBrandSnapshots() ([]*model.BrandFeatureSnapshot, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_brand_snapshots()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var snapshots []*model.BrandFeatureSnapshot
	for rows.Next() {
		snapshot := &model.BrandFeatureSnapshot{}
		var features pgvector.Vector
		err := rows.Scan(
			&snapshot.BrandID,
			&snapshot.RID,
			&snapshot.Name,
			&snapshot.Sector,
			&snapshot.Location,
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
