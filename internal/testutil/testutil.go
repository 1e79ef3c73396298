//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides fixtures and helpers for tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultTestConnString is the default connection string for tests.
	// Override with SALES_TEST_CONN environment variable.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "sales_test_"
)

// SampleHeader is the header row of a full sales file.
const SampleHeader = "ORDER_NUMBER,QUANTITY_ORDERED,PRICE_EACH,ORDER_LINE_NUMBER,SALES," +
	"ORDER_DATE,STATUS,QTR_ID,MONTH_ID,YEAR_ID,PRODUCT_LINE,MSRP,PRODUCT_CODE," +
	"CUSTOMER_NAME,PHONE,ADDRESS_LINE1,ADDRESS_LINE2,CITY,STATE,POSTAL_CODE," +
	"COUNTRY,TERRITORY,CONTACT_LAST_NAME,CONTACT_FIRST_NAME,DEAL_SIZE\n"

// SampleCSV is a small sales file in the source layout. Row 6 has an
// unparseable date and row 7 duplicates row 1.
//
// Customers: Land of Toys (USA, 3 lines over 2 orders), Reims
// Collectables (France, 2 lines), Lyon Souveniers (France, 1 undated
// line) and Toys4GrownUps (USA, 1 line).
const SampleCSV = SampleHeader +
	`10107,30,95.70,2,2871.00,2/24/2003 0:00,Shipped,1,2,2003,Motorcycles,95,S10_1678,Land of Toys Inc.,2125557818,897 Long Airport Avenue,,NYC,NY,10022,USA,NA,Yu,Kwai,Small` + "\n" +
	`10121,34,81.35,5,2765.90,5/7/2003 0:00,Shipped,2,5,2003,Motorcycles,95,S10_1678,Reims Collectables,26.47.1555,59 rue de l'Abbaye,,Reims,,51100,France,EMEA,Henriot,Paul,Small` + "\n" +
	`10134,41,94.74,2,3884.34,7/1/2003 0:00,Shipped,3,7,2003,Classic Cars,100,S10_1949,Land of Toys Inc.,2125557818,897 Long Airport Avenue,,NYC,NY,10022,USA,NA,Yu,Kwai,Medium` + "\n" +
	`10145,45,83.26,6,3746.70,8/25/2003 0:00,Shipped,3,8,2003,Classic Cars,100,S10_1949,Toys4GrownUps.com,6265557265,78934 Hillside Dr.,,Pasadena,CA,90003,USA,NA,Young,Julie,Medium` + "\n" +
	`10159,49,100,14,5205.27,10/10/2003 0:00,Shipped,4,10,2003,Motorcycles,95,S10_1678,Reims Collectables,26.47.1555,59 rue de l'Abbaye,,Reims,,51100,France,EMEA,Henriot,Paul,Medium` + "\n" +
	`10168,36,96.66,1,3479.76,not recorded,Shipped,4,10,2003,Planes,118,S18_1662,Lyon Souveniers,+33 1 46 62 7555,27 rue du Colonel Pierre Avia,Level 3,Paris,,75508,France,EMEA,Da Cunha,Daniel,Medium` + "\n" +
	`10107,30,95.70,2,2871.00,2/24/2003 0:00,Shipped,1,2,2003,Motorcycles,95,S10_1678,Land of Toys Inc.,2125557818,897 Long Airport Avenue,,NYC,NY,10022,USA,NA,Yu,Kwai,Small` + "\n"

// UndatedCSV is a sales file in which no order date parses.
const UndatedCSV = SampleHeader +
	`10200,20,50.00,1,1000.00,someday,Shipped,1,2,2004,Planes,60,S18_1662,Acme Models,,,,,,,USA,,,,Small` + "\n" +
	`10201,10,80.00,1,800.00,never,Shipped,3,8,2004,Trains,100,S32_3207,Bolt Hobbies,,,,,,,France,,,,Small` + "\n"

// WriteUndated writes UndatedCSV and returns its path.
func WriteUndated(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "undated.csv", UndatedCSV)
}

// WriteFile writes content to name inside a per-test temporary
// directory and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteSample writes SampleCSV and returns its path.
func WriteSample(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "sales_data_sample.csv", SampleCSV)
}

// PostgresAvailable checks if PostgreSQL is available for testing.
// Returns the connection string if available, empty string otherwise.
func PostgresAvailable() string {
	connStr := os.Getenv("SALES_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return ""
	}

	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// CreateTestDB creates a fresh database and returns its connection
// string. The database is dropped when the test passes and kept for
// inspection when it fails.
func CreateTestDB(t *testing.T, baseConnStr string) string {
	t.Helper()

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	dbName := TestDBPrefix + hex.EncodeToString(randomBytes)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	config, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	// ConnString() doesn't reflect changes made to ConnConfig.Database
	cc := config.ConnConfig
	var testConnStr string
	if cc.Password != "" {
		testConnStr = fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			cc.User, cc.Password, cc.Host, cc.Port, dbName)
	} else {
		testConnStr = fmt.Sprintf("postgres://%s@%s:%d/%s",
			cc.User, cc.Host, cc.Port, dbName)
	}

	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", dbName)
			return
		}
		dropTestDB(t, baseConnStr, dbName)
	})

	return testConnStr
}

func dropTestDB(t *testing.T, baseConnStr, dbName string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer pool.Close()

	_, _ = pool.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, dbName)

	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

// ConnectTestDB connects to a test database and closes the pool when
// the test ends.
func ConnectTestDB(t *testing.T, connStr string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}
