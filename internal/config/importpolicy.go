package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ImportPolicy bounds spreadsheet ingestion. Operations teams adjust the
// allowed enumerations without a redeploy; the file is watched for changes.
type ImportPolicy struct {
	MaxRows          int      `mapstructure:"maxRows"`
	AllowedStatuses  []string `mapstructure:"allowedStatuses"`
	AllowedClaimType []string `mapstructure:"allowedClaimTypes"`
	AllowedCaseTypes []string `mapstructure:"allowedCaseTypes"`
}

func DefaultImportPolicy() ImportPolicy {
	return ImportPolicy{
		MaxRows:          5000,
		AllowedStatuses:  []string{"pending", "reviewed", "approved"},
		AllowedClaimType: []string{"age", "invalidity", "survivors", "withdrawal", "emigration"},
		AllowedCaseTypes: []string{"recovery", "prosecution", "appeal", "injunction"},
	}
}

type ImportPolicyHolder struct {
	current atomic.Value // holds ImportPolicy
}

func NewImportPolicyHolder() (*ImportPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("import-policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/caseboard/config")
	v.AddConfigPath("/etc/caseboard")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CASEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultImportPolicy()
		v.SetDefault("import.maxRows", defaults.MaxRows)
		v.SetDefault("import.allowedStatuses", defaults.AllowedStatuses)
		v.SetDefault("import.allowedClaimTypes", defaults.AllowedClaimType)
		v.SetDefault("import.allowedCaseTypes", defaults.AllowedCaseTypes)
	}

	var policy ImportPolicy
	if err := v.UnmarshalKey("import", &policy); err != nil {
		return nil, err
	}
	if err := validateImportPolicy(policy); err != nil {
		return nil, err
	}

	holder := &ImportPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ImportPolicy
		if err := v.UnmarshalKey("import", &updated); err != nil {
			log.Printf("[import-policy] reload failed: %v", err)
			return
		}
		if err := validateImportPolicy(updated); err != nil {
			log.Printf("[import-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[import-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ImportPolicyHolder) Get() ImportPolicy {
	return h.current.Load().(ImportPolicy)
}

// StaticImportPolicy returns a holder pinned to the given policy, with
// no file watching. Tests use this.
func StaticImportPolicy(policy ImportPolicy) *ImportPolicyHolder {
	holder := &ImportPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func validateImportPolicy(policy ImportPolicy) error {
	if policy.MaxRows <= 0 {
		return errors.New("import.maxRows must be positive")
	}
	if len(policy.AllowedStatuses) == 0 {
		return errors.New("import.allowedStatuses cannot be empty")
	}
	return nil
}
