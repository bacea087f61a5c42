package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoIncludePatterns indicates no source patterns were configured
	ErrNoIncludePatterns = errors.New("no include patterns")

	// ErrEmptyURI indicates a missing graph database URI
	ErrEmptyURI = errors.New("empty neo4j uri")

	// ErrInvalidPoolSize indicates an invalid connection pool size
	ErrInvalidPoolSize = errors.New("invalid neo4j pool size")

	// ErrInvalidTimeout indicates an invalid connection timeout
	ErrInvalidTimeout = errors.New("invalid neo4j timeout")

	// ErrInvalidWorkers indicates an invalid worker count
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// Validate checks that the configuration is valid and complete. The project
// name is deliberately not validated here: commands that need one merge the
// --project flag in first and check it themselves.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateNeo4j(&cfg.Neo4j); err != nil {
		errs = append(errs, err)
	}

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	if len(cfg.Include) == 0 {
		return fmt.Errorf("%w: at least one paths.include pattern required", ErrNoIncludePatterns)
	}
	return nil
}

func validateNeo4j(cfg *Neo4jConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.URI) == "" {
		errs = append(errs, fmt.Errorf("%w: neo4j.uri is required", ErrEmptyURI))
	}

	if cfg.MaxPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_pool_size must be positive, got %d", ErrInvalidPoolSize, cfg.MaxPoolSize))
	}

	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_seconds must be positive, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	// Zero means auto-size to the CPU count
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
