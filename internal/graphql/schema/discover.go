package schema

import (
	"context"
	"fmt"

	"github.com/roach88/worldgraph/internal/graphql/object"
	"github.com/roach88/worldgraph/internal/log"
	"github.com/roach88/worldgraph/internal/store"
	"github.com/roach88/worldgraph/internal/typemap"
)

// Source is the store surface discovery needs.
type Source interface {
	object.Pool
	Definitions(ctx context.Context) ([]store.Definition, error)
}

// Discover builds the component object plus one storage object per
// distinct component name found in src. Definitions that fail to parse are
// logged and left out of the schema.
//
// parse may be nil (typemap.Parse) or a cache's Parse method.
func Discover(ctx context.Context, src Source, parse typemap.ParseFunc, logger log.Logger) ([]object.Object, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	defs, err := src.Definitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	storage := make([]object.Object, 0, len(defs))
	typeNames := make([]string, 0, len(defs))
	for _, d := range defs {
		o, err := object.NewStorageObject(src, parse, d.Name, d.StorageDefinition)
		if err != nil {
			// Components of a skipped type still resolve; their storage field
			// reports the type as unknown.
			logger.Warnw("Skipping storage type", "name", d.Name, "err", err)
			continue
		}
		storage = append(storage, o)
		typeNames = append(typeNames, o.TypeName())
		logger.Debugw("Discovered storage type", "name", d.Name, "type", o.TypeName(), "fields", o.FieldTypeMapping().Len())
	}

	objects := make([]object.Object, 0, len(storage)+1)
	objects = append(objects, object.NewComponentObject(src, parse, typeNames))
	objects = append(objects, storage...)

	logger.Infow("Discovered schema objects", "storageTypes", len(typeNames))
	return objects, nil
}
