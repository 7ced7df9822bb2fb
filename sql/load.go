package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed brands.sql
var brandsSQL string

//go:embed influencers.sql
var influencersSQL string

//go:embed decisions.sql
var decisionsSQL string

// Function lists for verification
var BrandsFunctions = []string{
	"init_brands",
	"insert_brand",
	"select_brand",
	"select_brand_by_rid",
	"select_all_brands",
	"delete_brand",
	"upsert_brand_stats",
	"select_brand_stats",
	"select_brand_snapshots",
}

var InfluencersFunctions = []string{
	"init_influencers",
	"upsert_influencer_stats",
	"select_influencer_stats",
	"select_influencer_snapshots",
	"delete_influencer_stats",
}

var DecisionsFunctions = []string{
	"init_decisions",
	"upsert_decision",
	"select_decisions_by_user",
	"select_decided_brand_ids",
	"delete_decision",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadBrandsSql loads brand-related SQL functions
func LoadBrandsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, BrandsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing brands functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(brandsSQL)
	if err != nil {
		return fmt.Errorf("error executing brands SQL: %w", err)
	}

	exist, err := checkFunctions(db, BrandsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL brands functions loaded successfully")
	return nil
}

// LoadInfluencersSql loads influencer-related SQL functions
func LoadInfluencersSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, InfluencersFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing influencers functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(influencersSQL)
	if err != nil {
		return fmt.Errorf("error executing influencers SQL: %w", err)
	}

	exist, err := checkFunctions(db, InfluencersFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL influencers functions loaded successfully")
	return nil
}

// LoadDecisionsSql loads suggestion-ledger SQL functions
func LoadDecisionsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, DecisionsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing decisions functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(decisionsSQL)
	if err != nil {
		return fmt.Errorf("error executing decisions SQL: %w", err)
	}

	exist, err := checkFunctions(db, DecisionsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL decisions functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadBrandsSql(db, force); err != nil {
		return err
	}

	if err := LoadInfluencersSql(db, force); err != nil {
		return err
	}

	if err := LoadDecisionsSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
