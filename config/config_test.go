package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Port:       "8080",
		GoEnv:      "test",
		DBHost:     "localhost",
		DBUser:     "helpdesk",
		DBPassword: "segredo",
		DBName:     "helpdesk",
		DBPort:     "5432",
		DBSSLMode:  "disable",
	}
}

func TestValidate(t *testing.T) {
	t.Run("complete database configuration passes", func(t *testing.T) {
		assert.NoError(t, baseConfig().Validate())
	})

	t.Run("each missing database variable fails", func(t *testing.T) {
		mutations := map[string]func(*Config){
			"DB_HOST":     func(c *Config) { c.DBHost = "" },
			"DB_USER":     func(c *Config) { c.DBUser = "" },
			"DB_PASSWORD": func(c *Config) { c.DBPassword = "" },
			"DB_NAME":     func(c *Config) { c.DBName = "" },
			"DB_PORT":     func(c *Config) { c.DBPort = "" },
		}
		for name, mutate := range mutations {
			cfg := baseConfig()
			mutate(cfg)
			err := cfg.Validate()
			assert.Error(t, err, "missing %s must be rejected", name)
			assert.Contains(t, err.Error(), name)
		}
	})
}

func TestDSN(t *testing.T) {
	dsn := baseConfig().DSN()
	assert.Equal(t, "host=localhost user=helpdesk password=segredo dbname=helpdesk port=5432 sslmode=disable", dsn)
}

func TestUseS3(t *testing.T) {
	cfg := baseConfig()
	assert.False(t, cfg.UseS3())

	cfg.AWSS3Bucket = "helpdesk-anexos"
	assert.True(t, cfg.UseS3())
}

func TestEnvironmentPredicates(t *testing.T) {
	cfg := baseConfig()
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.IsProduction())

	cfg.GoEnv = "production"
	assert.True(t, cfg.IsProduction())
}
