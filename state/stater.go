// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/remora-chain/remora/kv"
)

const (
	// PropsBucketName is the bucket holding db-wide properties.
	PropsBucketName = "p"

	configKey = "config"

	// schemaVersion is bumped on incompatible state layout changes.
	schemaVersion = 1
)

// Stater is the state creator.
//
// It gates the underlying store on open. A store written with a
// different schema version is refused rather than misread.
type Stater struct {
	db kv.GetPutter
}

// NewStater create a new stater over the given store.
func NewStater(db kv.GetPutter) (*Stater, error) {
	cfg := config{SchemaVersion: schemaVersion}
	if err := cfg.LoadOrSave(kv.Bucket(PropsBucketName).NewStore(db)); err != nil {
		return nil, errors.Wrap(err, "load state config")
	}
	if cfg.SchemaVersion != schemaVersion {
		return nil, errors.Errorf("state schema version mismatch: have %d, want %d", cfg.SchemaVersion, schemaVersion)
	}
	return &Stater{db}, nil
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return New(s.db)
}

type config struct {
	SchemaVersion uint32
}

func (c *config) LoadOrSave(store kv.GetPutter) error {
	data, err := store.Get([]byte(configKey))
	if err == nil {
		return json.Unmarshal(data, c)
	}

	if !store.IsNotFound(err) {
		return err
	}
	data, err = json.Marshal(c)
	if err != nil {
		return err
	}
	return store.Put([]byte(configKey), data)
}
