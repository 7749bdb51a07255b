package config

const (
	// DefaultDatabasePath is used when DATABASE_PATH is not set.
	DefaultDatabasePath = "./bookcatalog.db"
)
