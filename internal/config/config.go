// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeService runs a standalone HTTP server serving every flow.
	ModeService = "service"
	// ModeLambda runs a single flow behind the AWS Lambda runtime.
	ModeLambda = "lambda"

	// SecretSourceEnv reads the signing secret from configuration or the environment.
	SecretSourceEnv = "env"
	// SecretSourceSSM reads the signing secret from an SSM parameter.
	SecretSourceSSM = "ssm"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Signing is a struct that contains the configuration for partner signature verification.
	Signing signing
	// Upstream is a struct that contains the configuration for the countries GraphQL API.
	Upstream upstream
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
	// S3 is a struct that contains the configuration for S3.
	S3 struct {
		Archive struct {
			BucketName string `yaml:"bucketName,omitempty"`
			Enabled    bool   `yaml:"enabled,omitempty"`
		} `yaml:"archive,omitempty"`
	} `yaml:"s3,omitempty"`
}

type signing struct {
	// Source selects where the secret comes from: 'env' or 'ssm'.
	Source string `yaml:"source,omitempty" default:"env"`
	Secret string `yaml:"secret,omitempty"`
	SSMKey string `yaml:"ssmKey,omitempty"`
}

type upstream struct {
	Endpoint string `yaml:"endpoint,omitempty" default:"https://countries.trevorblades.com/graphql/"`
	// Timeout bounds each upstream call. Zero means no timeout beyond the inbound request.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type service struct {
	CountryPath   string        `yaml:"countryPath,omitempty" default:"/country"`
	ContinentPath string        `yaml:"continentPath,omitempty" default:"/continent"`
	Addr          string        `yaml:"addr,omitempty"`
	Port          string        `yaml:"port,omitempty" default:"8080"`
	Timeout       time.Duration `yaml:"timeout,omitempty" default:"5s"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
	// Flow is the single flow served by the function: 'country' or 'continent'.
	Flow string `yaml:"flow,omitempty" default:"continent"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Signing),
		defaults.Set(&Upstream),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global   global   `yaml:"global,omitempty"`
		Signing  signing  `yaml:"signing,omitempty"`
		Upstream upstream `yaml:"upstream,omitempty"`
		Service  service  `yaml:"service,omitempty"`
		Lambda   lambda   `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Signing = a.Signing
	Upstream = a.Upstream
	Service = a.Service
	Lambda = a.Lambda

	return nil
}
