package chain

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playline/internal/domain/catalog"
	"github.com/osa030/playline/internal/infra/config"
)

// ShuffleSettings holds the shuffle policy settings.
type ShuffleSettings struct {
	Seed int64 `yaml:"seed" mapstructure:"seed" default:"1"`
}

// FromConfig builds a policy from configuration. cat is only consulted by
// the catalog policy and may be nil otherwise.
func FromConfig(cfg config.PolicyConfig, cat catalog.Catalog) (Policy, error) {
	zlog.Debug().Str("type", cfg.Type).Msgf("chain: creating policy: settings=%+v", cfg.Settings)

	switch cfg.Type {
	case "linear":
		return LinearStop{}, nil

	case "loop":
		return LinearLoop{}, nil

	case "shuffle":
		// Defaults first, then decode over them, so an explicit zero
		// value in the settings is not mistaken for "unset".
		var settings ShuffleSettings
		if err := defaults.Set(&settings); err != nil {
			return nil, errors.Wrap(err, "failed to set defaults")
		}
		if err := mapstructure.Decode(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "failed to decode shuffle settings")
		}
		if err := validator.New().Struct(settings); err != nil {
			return nil, errors.Wrap(err, "validation failed")
		}
		return NewShuffle(settings.Seed), nil

	case "catalog":
		if cat == nil {
			return nil, errors.New("catalog policy requires a catalog")
		}
		return NewCatalogChain(cat), nil

	default:
		return nil, errors.Newf("unsupported policy type: %s", cfg.Type)
	}
}
