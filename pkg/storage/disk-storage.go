package storage

import (
	"os"
	"path/filepath"

	"github.com/matst80/slask-storefront/pkg/common/jsoncompat"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/types"
)

const preferencesFile = "preferences.json"

// SavePreferences writes the last applied preferences so a restart without a
// reachable store starts from the same document.
func (d *DiskStorage) SavePreferences(p *types.Preferences) error {
	return d.SaveJson(p, preferencesFile)
}

func (d *DiskStorage) LoadPreferences() (*types.Preferences, error) {
	name, _ := d.GetFileName(preferencesFile)
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return preferences.Resolve(data)
}

func (d *DiskStorage) SaveJson(data any, name string) error {
	fileName, tmpFileName := d.GetFileName(name)
	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}

	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return err
	}
	if err = os.WriteFile(tmpFileName, bytes, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpFileName, fileName)
}
