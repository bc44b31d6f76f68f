package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv loads files, or .env when none are given, into the process
// environment. Variables already set are not overridden.
func Loadenv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
