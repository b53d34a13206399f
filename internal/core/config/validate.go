package config

import (
	"fmt"
	"net"
	"os"

	"github.com/hay-kot/criterio"
)

// MinSecretKeyLength is the shortest accepted server.secret_key.
const MinSecretKeyLength = 32

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = errs.Append("server.addr", fmt.Errorf("invalid address %q: %w", c.Server.Addr, err))
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"server.read_timeout", int64(c.Server.ReadTimeout)},
		{"server.write_timeout", int64(c.Server.WriteTimeout)},
		{"server.idle_timeout", int64(c.Server.IdleTimeout)},
		{"server.shutdown_timeout", int64(c.Server.ShutdownTimeout)},
	}
	for _, to := range timeouts {
		if to.value < 0 {
			errs = errs.Append(to.field, fmt.Errorf("must not be negative"))
		}
	}

	if c.Server.SecretKey != "" && len(c.Server.SecretKey) < MinSecretKeyLength {
		errs = errs.Append("server.secret_key", fmt.Errorf("must be at least %d bytes", MinSecretKeyLength))
	}

	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must not be negative"))
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("cannot exceed max_open_conns (%d)", c.Database.MaxOpenConns))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("must not be negative"))
	}

	if c.Profiler.Enabled && (c.Profiler.Port < 0 || c.Profiler.Port > 65535) {
		errs = errs.Append("profiler.port", fmt.Errorf("must be between 0 and 65535, got %d", c.Profiler.Port))
	}

	return errs.ToError()
}

// ValidateDeep performs Validate plus file system checks on the config file
// and the data directory. The configPath argument specifies the config file
// location to validate (empty string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
