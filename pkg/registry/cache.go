package registry

import (
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"
	"mhub.dev/mhub/pkg/types"
)

// IndexCache keeps rendered repository indexes in a local leveldb so index
// reads do not have to list and decode every manifest from storage.
type IndexCache struct {
	db *leveldb.DB
}

func OpenIndexCache(path string) (*IndexCache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &IndexCache{db: db}, nil
}

func (c *IndexCache) Get(repository string) (types.Index, bool) {
	raw, err := c.db.Get(indexCacheKey(repository), nil)
	if err != nil {
		return types.Index{}, false
	}
	index := types.Index{}
	if err := json.Unmarshal(raw, &index); err != nil {
		return types.Index{}, false
	}
	return index, true
}

func (c *IndexCache) Set(repository string, index types.Index) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return c.db.Put(indexCacheKey(repository), raw, nil)
}

func (c *IndexCache) Remove(repository string) error {
	return c.db.Delete(indexCacheKey(repository), nil)
}

func (c *IndexCache) Close() error {
	return c.db.Close()
}

func indexCacheKey(repository string) []byte {
	return []byte("index/" + repository)
}
