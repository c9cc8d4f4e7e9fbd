package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// process resolves a config struct of type T from lookuper.
func process[T any](ctx context.Context, lookuper envconfig.Lookuper) (*T, error) {
	var cfg T
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
