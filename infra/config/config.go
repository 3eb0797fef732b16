package config

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	// MissingKeyErr signals a required key that is defined neither locally nor globally.
	MissingKeyErr = errors.New("missing key")
	// InvalidErr signals a config value that cannot be used.
	InvalidErr = errors.New("invalid config")
)

// Load loads the section under key from the given yaml file into v.
func Load(file string, key string, v interface{}) error {

	b, err := ioutil.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not load config file '%s': %w", file, err)
	}

	sections := make(map[string]yaml.Node)
	err = yaml.Unmarshal(b, &sections)
	if err != nil {
		return fmt.Errorf("could not parse config file '%s': %w", file, err)
	}

	section, ok := sections[key]
	if !ok {
		return fmt.Errorf("no '%s' section in '%s': %w", key, file, MissingKeyErr)
	}

	err = section.Decode(v)
	if err != nil {
		return fmt.Errorf("could not decode the config for %s: %w", key, err)
	}

	log.Info().Str("file", file).Str("section", key).Msg("parsed config")

	return nil
}

// Missing wraps the MissingKeyErr for the given key.
func Missing(key string) error {
	return fmt.Errorf("'%s' is defined neither in the todo item nor globally: %w", key, MissingKeyErr)
}

// Invalid wraps the InvalidErr with the given message.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), InvalidErr)
}
