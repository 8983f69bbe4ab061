package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/cryptox"
	"github.com/cryptobulldev/userdash/internal/logging"
)

// KV is the key/value storage the persister writes through. The client
// metadata repository satisfies it; Get returns (nil, nil) for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// record mirrors the browser layout of the persisted session so a record
// written by either client is readable by the other.
type record struct {
	State   recordState `json:"state"`
	Version int         `json:"version"`
}

type recordState struct {
	AccessToken  *string `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
	Hydrated     bool    `json:"hydrated"`
}

// Persister loads and saves the session under a single named record. When
// a sealing key is set the record is encrypted at rest.
type Persister struct {
	kv   KV
	name string
	key  []byte
}

// NewPersister stores the record under common.SessionRecordKey. key may be
// nil to store plaintext JSON.
func NewPersister(kv KV, key []byte) *Persister {
	return &Persister{kv: kv, name: common.SessionRecordKey, key: key}
}

// Load returns the persisted pair or nil when nothing usable was stored.
func (p *Persister) Load(ctx context.Context) (*Pair, error) {
	raw, err := p.kv.Get(ctx, p.name)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	if p.key != nil {
		raw, err = cryptox.Open(raw, p.key)
		if err != nil {
			return nil, fmt.Errorf("open session record: %w", err)
		}
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}

	if rec.State.AccessToken == nil || *rec.State.AccessToken == "" {
		return nil, nil
	}
	pair := &Pair{Access: *rec.State.AccessToken}
	if rec.State.RefreshToken != nil {
		pair.Refresh = *rec.State.RefreshToken
	}
	return pair, nil
}

// Save writes s. A state without a pair is written with null credentials.
func (p *Persister) Save(ctx context.Context, s State) error {
	rec := record{State: recordState{Hydrated: s.Hydrated}}
	if s.Pair != nil {
		access, refresh := s.Pair.Access, s.Pair.Refresh
		rec.State.AccessToken = &access
		if refresh != "" {
			rec.State.RefreshToken = &refresh
		}
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if p.key != nil {
		raw, err = cryptox.Seal(raw, p.key)
		if err != nil {
			return fmt.Errorf("seal session record: %w", err)
		}
	}
	return p.kv.Set(ctx, p.name, raw)
}

// Clear removes the persisted record.
func (p *Persister) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, p.name)
}

// Hydrate restores the persisted pair into store and fires exactly one
// HYDRATED. A record that cannot be read is reported but still ends
// hydration, with an empty session, so the app never waits forever.
func Hydrate(ctx context.Context, store *Store, p *Persister) error {
	pair, err := p.Load(ctx)
	if err != nil {
		store.Transition(Hydrated{})
		return fmt.Errorf("hydrate session: %w", err)
	}
	store.Transition(Hydrated{Restored: pair})
	return nil
}

// Bind persists every subsequent transition of store. Save failures are
// logged and otherwise ignored; the in-memory session stays authoritative.
func Bind(ctx context.Context, store *Store, p *Persister, log logging.Logger) (unsubscribe func()) {
	log = log.With("module", "session-persist")
	return store.Subscribe(func(s State) {
		if err := p.Save(ctx, s); err != nil {
			log.Error(ctx, "failed to persist session", "error", err)
		}
	})
}
