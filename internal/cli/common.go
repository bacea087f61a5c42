package cli

import (
	"context"
	"fmt"
	"os"

	"javamap/internal/config"
	"javamap/internal/graphdb"
	"javamap/internal/logger"
)

// setup loads configuration, applies flag overrides, and builds the logger.
// Every subcommand that touches the graph starts here.
func setup() (*config.Config, *logger.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadConfigFromFile(cfgFile)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg, err = config.LoadConfigFromDir(cwd)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if projectFlag != "" {
		cfg.Project.Name = projectFlag
	}
	if cfg.Project.Name == "" {
		return nil, nil, fmt.Errorf("project name required: set --project or project.name in javamap.yml")
	}

	mode := "prod"
	if verboseFlag {
		mode = "dev"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

// connect opens the Neo4j client and verifies connectivity.
func connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*graphdb.Client, error) {
	db, err := graphdb.New(ctx, cfg.Neo4j, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.Neo4j.URI, err)
	}
	return db, nil
}
