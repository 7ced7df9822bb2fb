package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
	loadSql "github.com/siherrmann/influmatch/sql"
)

// DecisionsDBHandlerFunctions defines the interface for suggestion-ledger database operations.
type DecisionsDBHandlerFunctions interface {
	UpsertDecision(decision *model.SuggestionDecision) error
	SelectDecisionsByUser(userRID uuid.UUID) ([]*model.DecisionRecord, error)
	SelectDecidedBrandIDs(userRID uuid.UUID) ([]int64, error)
	DeleteDecision(userRID uuid.UUID, brandID int64) error
}

// DecisionsDBHandler handles suggestion-ledger database operations
type DecisionsDBHandler struct {
	db *helper.Database
}

// NewDecisionsDBHandler creates a new decisions database handler.
// It initializes the database connection and loads ledger-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
// The brands tables must exist first; the ledger references them.
func NewDecisionsDBHandler(db *helper.Database, force bool) (*DecisionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	decisionsDbHandler := &DecisionsDBHandler{
		db: db,
	}

	err := loadSql.LoadDecisionsSql(decisionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load decisions sql", err)
	}

	err = decisionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DecisionsDBHandler")

	return decisionsDbHandler, nil
}

// CreateTable creates the 'suggestion_decisions' table in the database.
// If the table already exists, it does not create it again.
func (h *DecisionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_decisions();`)
	if err != nil {
		log.Panicf("error initializing suggestion_decisions table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table suggestion_decisions")

	return nil
}

// UpsertDecision inserts or overwrites the decision for a (user, brand) pair.
// Repeating a call with the same pair leaves exactly one ledger row.
func (h *DecisionsDBHandler) UpsertDecision(decision *model.SuggestionDecision) error {
	if err := decision.Decision.Validate(); err != nil {
		return helper.NewError("validate decision", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_decision($1, $2, $3)`,
		decision.UserRID,
		decision.BrandID,
		string(decision.Decision),
	)

	err := row.Scan(
		&decision.ID,
		&decision.UserRID,
		&decision.BrandID,
		&decision.Decision,
		&decision.DecidedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDecisionsByUser retrieves all decisions of a user with brand detail,
// newest first
func (h *DecisionsDBHandler) SelectDecisionsByUser(userRID uuid.UUID) ([]*model.DecisionRecord, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_decisions_by_user($1)`,
		userRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.DecisionRecord
	for rows.Next() {
		record := &model.DecisionRecord{Brand: &model.Brand{}}
		err := rows.Scan(
			&record.Brand.ID,
			&record.Brand.RID,
			&record.Brand.Name,
			&record.Brand.Sector,
			&record.Brand.Location,
			&record.Brand.CreatedAt,
			&record.Decision,
			&record.DecidedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// SelectDecidedBrandIDs retrieves the IDs of all brands the user has decided
// on, regardless of the decision
func (h *DecisionsDBHandler) SelectDecidedBrandIDs(userRID uuid.UUID) ([]int64, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_decided_brand_ids($1)`,
		userRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var brandIDs []int64
	for rows.Next() {
		var brandID int64
		err := rows.Scan(&brandID)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		brandIDs = append(brandIDs, brandID)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return brandIDs, nil
}

// DeleteDecision removes the ledger row of a (user, brand) pair
func (h *DecisionsDBHandler) DeleteDecision(userRID uuid.UUID, brandID int64) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_decision($1, $2)`,
		userRID,
		brandID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
