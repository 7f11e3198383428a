package storage

import (
	"fmt"
	"path"
	"time"
)

// DiskStorage keeps per-storefront snapshots below RootFolder.
type DiskStorage struct {
	Storefront string
	RootFolder string
}

func NewDiskStorage(storefront, rootFolder string) *DiskStorage {
	return &DiskStorage{
		Storefront: storefront,
		RootFolder: rootFolder,
	}
}

func (ds *DiskStorage) GetFileName(name string) (string, string) {
	fileName := path.Join(ds.RootFolder, ds.Storefront, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixMilli())
	return fileName, tmpFileName
}
