// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// placeholderPrefix marks values a deployment template left unfilled
const placeholderPrefix = "MISSING_"

// Validator checks one aspect of a loaded configuration
type Validator interface {
	Validate(cfg *Config) error
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func configValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
		_ = structValidator.RegisterValidation("notplaceholder", func(fl validator.FieldLevel) bool {
			return !strings.HasPrefix(fl.Field().String(), placeholderPrefix)
		})
	})
	return structValidator
}

// BasicValidator checks required fields and the stock limits every
// environment relies on
type BasicValidator struct{}

func (v *BasicValidator) Validate(cfg *Config) error {
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	switch {
	case cfg.Database.MaxConnections < cfg.Database.MinConnections:
		return fmt.Errorf("database max_connections must be >= min_connections")
	case cfg.Redis.PoolSize <= 0:
		return fmt.Errorf("redis pool_size must be positive")
	case cfg.Stock.MaxBatchItems <= 0:
		return fmt.Errorf("stock max_batch_items must be positive")
	case cfg.Stock.DefaultPageSize <= 0 || cfg.Stock.DefaultPageSize > cfg.Stock.MaxPageSize:
		return fmt.Errorf("stock default_page_size must be between 1 and max_page_size")
	case cfg.Stock.LockTTL <= 0:
		return fmt.Errorf("stock lock_ttl must be positive")
	case cfg.Stock.ExportMaxRows < 0:
		return fmt.Errorf("stock export_max_rows must not be negative")
	}
	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

func (v *ProductionValidator) Validate(cfg *Config) error {
	if cfg.Database.Password == "" || strings.HasPrefix(cfg.Database.Password, placeholderPrefix) {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}
	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	if cfg.Server.TLSEnabled && (cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "") {
		return fmt.Errorf("TLS cert and key files must be provided when TLS is enabled")
	}

	return nil
}

// validateRequiredFields runs the validate tags on cfg and reports the
// first failing field as Section.Field
func validateRequiredFields(cfg *Config) error {
	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	field := strings.TrimPrefix(verrs[0].StructNamespace(), "Config.")
	return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, field)
}
