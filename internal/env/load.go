// Package env loads .env files into the process environment so that the
// config layer sees them as ordinary variables.
package env

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// Load reads the given files, or .env when none are named. Variables that
// are already set keep their value. Missing files are not an error.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("No %s file found, assuming environment variables are set directly.", f)
				continue
			}
			return err
		}
	}
	return nil
}
