package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file in the working directory, or from
// the file named by BRIDGE_ENV_FILE. Variables already set in the environment
// win. A missing file is reported with an error satisfying os.IsNotExist.
func LoadEnv() error {
	path := os.Getenv("BRIDGE_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	return godotenv.Load(path)
}
