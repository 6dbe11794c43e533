package kvstore

import (
	"fmt"

	"github.com/fystack/keno-odds/pkg/common/config"
	"github.com/fystack/keno-odds/pkg/common/enum"
	"github.com/fystack/keno-odds/pkg/infra"
)

// NewFromConfig constructs an infra.KVStore based on kvstore configuration.
func NewFromConfig(cfg config.KVStoreCfg) (infra.KVStore, error) {
	switch cfg.Type {
	case enum.KVStoreTypeBadger, "":
		codec := infra.CodecByName(cfg.Badger.Codec)
		if cfg.Badger.InMemory {
			return NewInMemoryBadgerStore(cfg.Badger.Prefix, codec)
		}
		return NewBadgerStore(cfg.Badger.Directory, cfg.Badger.Prefix, codec)
	default:
		return nil, fmt.Errorf("unsupported kvstore type: %s", cfg.Type)
	}
}
