package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/component"
)

var _ component.SchemaStorage = (*SchemaStorage)(nil)

type SchemaStorage struct {
	Client    *redis.Client
	namespace string
}

func NewSchemaStorage(client *redis.Client, namespace string) SchemaStorage {
	return SchemaStorage{
		Client:    client,
		namespace: namespace,
	}
}

func (r *SchemaStorage) schemaStorageKey() string {
	return r.namespace + ":schemas"
}

func (r *SchemaStorage) GetSchema(componentName string) ([]byte, error) {
	ctx := context.Background()
	schemaBytes, err := r.Client.HGet(ctx, r.schemaStorageKey(), componentName).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, eris.Wrapf(component.ErrNoSchemaFound, "component %q", componentName)
	} else if err != nil {
		return nil, eris.Wrap(err, "failed to get schema")
	}
	return schemaBytes, nil
}

func (r *SchemaStorage) SetSchema(componentName string, schemaData []byte) error {
	ctx := context.Background()
	return eris.Wrap(r.Client.HSet(ctx, r.schemaStorageKey(), componentName, schemaData).Err(), "failed to set schema")
}
