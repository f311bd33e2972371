package spclient

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// LoadConfig loads a sharepoint.Config from a YAML file and the environment.
// Environment variables use the SHAREPOINT_ prefix with underscores, e.g.
// SHAREPOINT_SITE_URL and SHAREPOINT_CLIENT_SECRET, and override file values.
//
// With an empty configPath, standard locations are searched (working
// directory, ~/.sharepoint, /etc/sharepoint) and a missing file is not an
// error; the environment alone can carry the full configuration.
func LoadConfig(configPath string) (*sharepoint.Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SHAREPOINT")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sharepoint"))
		}

		v.AddConfigPath("/etc/sharepoint/")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	cfg := configFromViper(v)

	if cfg.SiteURL == "" {
		return nil, sharepoint.ErrSiteURLRequired
	}

	return cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("retry_max", 0)
	v.SetDefault("debug", false)
	v.SetDefault("validate_fields", false)
	v.SetDefault("cache_type", string(sharepoint.CacheTypeNone))
}

// configFromViper maps the flat viper keys onto a sharepoint.Config.
func configFromViper(v *viper.Viper) *sharepoint.Config {
	cfg := &sharepoint.Config{
		SiteURL:        v.GetString("site_url"),
		ClientID:       v.GetString("client_id"),
		ClientSecret:   v.GetString("client_secret"),
		Realm:          v.GetString("realm"),
		Username:       v.GetString("username"),
		Password:       v.GetString("password"),
		RefreshToken:   v.GetString("refresh_token"),
		AccessToken:    v.GetString("access_token"),
		TokenURL:       v.GetString("token_url"),
		HTTPTimeout:    v.GetDuration("http_timeout"),
		RetryMax:       v.GetInt("retry_max"),
		RetryWaitMin:   v.GetDuration("retry_wait_min"),
		RetryWaitMax:   v.GetDuration("retry_wait_max"),
		Debug:          v.GetBool("debug"),
		UserAgent:      v.GetString("user_agent"),
		SkipTLSVerify:  v.GetBool("skip_tls_verify"),
		ValidateFields: v.GetBool("validate_fields"),
	}

	cacheType := sharepoint.CacheType(v.GetString("cache_type"))
	if cacheType != "" && cacheType != sharepoint.CacheTypeNone {
		cfg.Cache = cacheConfigFromViper(v, cacheType)
	}

	return cfg
}

func cacheConfigFromViper(v *viper.Viper, cacheType sharepoint.CacheType) *sharepoint.CacheConfig {
	cacheConfig := &sharepoint.CacheConfig{
		Type:    cacheType,
		Options: sharepoint.DefaultCacheOptions(),
	}

	if ttl := v.GetDuration("cache_ttl"); ttl > 0 {
		cacheConfig.Options.DefaultTTL = ttl
	}

	switch cacheType {
	case sharepoint.CacheTypeMemory:
		cacheConfig.Memory = &sharepoint.MemoryCacheConfig{
			MaxSize: v.GetInt("cache_max_size"),
		}
	case sharepoint.CacheTypeNATS:
		cacheConfig.NATS = &sharepoint.NATSKVConfig{
			URL:    v.GetString("cache_nats_url"),
			Bucket: v.GetString("cache_nats_bucket"),
		}
	case sharepoint.CacheTypeNone:
	}

	return cacheConfig
}
