package config

import "github.com/joho/godotenv"

// LoadTestConfig loads database settings for integration tests from TEST_DB_* variables.
// It returns nil without an error when they are not set, so callers can skip.
func LoadTestConfig() (*DatabaseConfig, error) {
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	db, err := loadDatabase("TEST_")
	if err != nil {
		return nil, nil
	}
	return &db, nil
}
