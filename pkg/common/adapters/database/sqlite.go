package database

import (
	"database/sql/driver"
	"strings"

	sqlite "github.com/glebarez/go-sqlite"
)

// SQLiteDriver is the database/sql driver name registered by glebarez/go-sqlite,
// used by both the gorm and bun stores.
const SQLiteDriver = "sqlite"

// sqliteFold lower-cases with Unicode rules. sqlite's own LOWER only folds ASCII.
const sqliteFold = "unicode_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(sqliteFold, 1, foldValue); err != nil {
		panic(err)
	}
}

func foldValue(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// foldFunc is the SQL function applied to a column before LIKE matching
func foldFunc(sqliteDialect bool) string {
	if sqliteDialect {
		return sqliteFold
	}
	return "LOWER"
}
