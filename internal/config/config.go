// Package config loads worldgraph settings from a YAML file, WORLDGRAPH_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/roach88/worldgraph/internal/felt"
	"github.com/spf13/viper"
)

// Keys shared by the config file, the environment and the flags.
const (
	DatabasePathKey     = "database.path"
	DatabaseMaxConnsKey = "database.max-open-conns"
	HTTPListenKey       = "http.listen"
	HTTPCORSOriginsKey  = "http.cors-origins"
	LogLevelKey         = "log-level"
	TypemapCacheKey     = "typemap-cache-size"
	WorldAddressKey     = "world.address"
	WorldRPCURLKey      = "world.rpc-url"
	WorldAccountKey     = "world.account-address"
	WorldPrivateKeyKey  = "world.private-key"
	WorldKeystoreKey    = "world.keystore-path"
	MetricsKey          = "metrics"
)

const envPrefix = "WORLDGRAPH"

type Config struct {
	Database         Database `mapstructure:"database"`
	HTTP             HTTP     `mapstructure:"http"`
	LogLevel         string   `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	TypemapCacheSize int      `mapstructure:"typemap-cache-size" validate:"gte=0"`
	World            World    `mapstructure:"world"`
	Metrics          bool     `mapstructure:"metrics"`
}

type Database struct {
	Path         string `mapstructure:"path" validate:"required"`
	MaxOpenConns int    `mapstructure:"max-open-conns" validate:"gte=1"`
}

type HTTP struct {
	Listen      string   `mapstructure:"listen" validate:"required,hostname_port"`
	CORSOrigins []string `mapstructure:"cors-origins" validate:"dive,required"`
}

// World identifies the indexed world contract and the account that deploys
// to it. It is reported, never used to submit transactions; the private key
// is only ever reported as present.
type World struct {
	Address        felt.Felt `mapstructure:"address" validate:"felt"`
	RPCURL         string    `mapstructure:"rpc-url" validate:"omitempty,url"`
	AccountAddress felt.Felt `mapstructure:"account-address" validate:"felt"`
	PrivateKey     felt.Felt `mapstructure:"private-key" validate:"felt"`
	KeystorePath   string    `mapstructure:"keystore-path" validate:"omitempty,filepath"`
}

// Signer names the configured signing credential: "keystore",
// "private-key", or "" when there is none. A keystore wins over a key.
func (w World) Signer() string {
	switch {
	case w.KeystorePath != "":
		return "keystore"
	case !w.PrivateKey.IsZero():
		return "private-key"
	default:
		return ""
	}
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database: Database{
			Path:         "worldgraph.db",
			MaxOpenConns: 4,
		},
		HTTP: HTTP{
			Listen:      "localhost:8080",
			CORSOrigins: []string{"*"},
		},
		LogLevel: "info",
	}
}

// New returns a viper instance seeded with the defaults and bound to the
// WORLDGRAPH_ environment.
func New() *viper.Viper {
	d := Default()

	v := viper.New()
	v.SetDefault(DatabasePathKey, d.Database.Path)
	v.SetDefault(DatabaseMaxConnsKey, d.Database.MaxOpenConns)
	v.SetDefault(HTTPListenKey, d.HTTP.Listen)
	v.SetDefault(HTTPCORSOriginsKey, d.HTTP.CORSOrigins)
	v.SetDefault(LogLevelKey, d.LogLevel)
	v.SetDefault(TypemapCacheKey, d.TypemapCacheSize)
	v.SetDefault(WorldAddressKey, d.World.Address.String())
	v.SetDefault(WorldRPCURLKey, d.World.RPCURL)
	v.SetDefault(WorldAccountKey, d.World.AccountAddress.String())
	v.SetDefault(WorldPrivateKeyKey, d.World.PrivateKey.String())
	v.SetDefault(WorldKeystoreKey, d.World.KeystorePath)
	v.SetDefault(MetricsKey, d.Metrics)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (when non-empty) into v, decodes the merged settings and
// validates them.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := new(Config)
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		feltHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

var feltType = reflect.TypeOf(felt.Felt{})

func feltHook(from, to reflect.Type, data any) (any, error) {
	if to != feltType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		return felt.Parse(data.(string))
	case reflect.Int, reflect.Int64:
		n := reflect.ValueOf(data).Int()
		if n < 0 {
			return nil, felt.ErrOutOfRange
		}
		return felt.FromUint64(uint64(n)), nil
	case reflect.Uint, reflect.Uint64:
		return felt.FromUint64(reflect.ValueOf(data).Uint()), nil
	}
	return nil, errors.New("field element must be a string or an integer")
}
