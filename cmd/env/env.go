package env

const (
	// Prefix is the env-var prefix for all commands
	Prefix = "TCV"

	// DBURLSuffix holds the Postgres connection string, combined
	// with the prefix (TCV_DB_URL)
	DBURLSuffix = "_DB_URL"
)
