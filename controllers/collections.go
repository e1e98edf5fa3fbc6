package controllers

import (
	"websage/sources/vectorstore"
	"websage/utils/types"
)

// CollectionsController exposes collection lifecycle operations over the store.
type CollectionsController struct {
	store *vectorstore.Client
}

func NewCollectionsController(store *vectorstore.Client) *CollectionsController {
	return &CollectionsController{store: store}
}

// List returns every stored collection with its document count.
func (c *CollectionsController) List() ([]types.CollectionInfo, error) {
	names, err := c.store.ListCollections()
	if err != nil {
		return nil, err
	}
	infos := make([]types.CollectionInfo, 0, len(names))
	for _, name := range names {
		count, err := c.store.Count(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, types.CollectionInfo{Name: name, Count: count})
	}
	return infos, nil
}

func (c *CollectionsController) Info(name string) (*types.CollectionInfo, error) {
	count, err := c.store.Count(name)
	if err != nil {
		return nil, err
	}
	return &types.CollectionInfo{Name: name, Count: count}, nil
}

func (c *CollectionsController) Delete(name string) error {
	return c.store.DeleteCollection(name)
}
