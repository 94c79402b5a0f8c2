package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// InitReader loads "<env>.env" when an environment name is given as the first
// argument. Without one the process environment is used as is.
func InitReader(args []string) error {
	if len(args) < 2 || args[1] == "" {
		return nil
	}
	environment := args[1]
	if err := godotenv.Load(environment + ".env"); err != nil {
		return fmt.Errorf("error loading %s.env file: %w", environment, err)
	}
	return nil
}
