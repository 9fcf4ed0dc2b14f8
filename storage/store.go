package storage

import (
	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
	"github.com/wippyai/wasm-programs/host"
	"github.com/wippyai/wasm-programs/value"
)

// Store reads and writes typed values in one program's host storage.
// It holds no cached state; every call is a host round-trip.
type Store struct {
	transit *host.Transit
	owner   handle.Handle
}

// New returns a store for owner's storage.
func New(t *host.Transit, owner handle.Handle) *Store {
	return &Store{transit: t, owner: owner}
}

// Owner returns the program whose storage this is.
func (s *Store) Owner() handle.Handle {
	return s.owner
}

// Set stores v under the field name.
func (s *Store) Set(name string, v value.Value) error {
	return s.put(ScalarKey(name), v)
}

// Get loads the field name.
func (s *Store) Get(name string) (value.Value, error) {
	return s.get(ScalarKey(name))
}

// SetMap stores v under entry k of namespace ns.
func (s *Store) SetMap(ns string, k, v value.Value) error {
	key, err := MapKey(ns, k)
	if err != nil {
		return err
	}
	return s.put(key, v)
}

// GetMap loads entry k of namespace ns.
func (s *Store) GetMap(ns string, k value.Value) (value.Value, error) {
	key, err := MapKey(ns, k)
	if err != nil {
		return value.Value{}, err
	}
	return s.get(key)
}

// Int loads the field name as an integer.
func (s *Store) Int(name string) (int64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	return v.AsInt()
}

// MapInt loads entry k of namespace ns as an integer.
func (s *Store) MapInt(ns string, k value.Value) (int64, error) {
	v, err := s.GetMap(ns, k)
	if err != nil {
		return 0, err
	}
	return v.AsInt()
}

// Program loads the field name as a program handle.
func (s *Store) Program(name string) (handle.Handle, error) {
	v, err := s.Get(name)
	if err != nil {
		return handle.Invalid, err
	}
	return v.AsProgram()
}

func (s *Store) put(key []byte, v value.Value) error {
	b, err := value.Encode(v)
	if err != nil {
		return err
	}
	return s.transit.Store(s.owner, key, b)
}

func (s *Store) get(key []byte) (value.Value, error) {
	b, err := s.transit.Fetch(s.owner, key)
	if err != nil {
		return value.Value{}, err
	}
	v, err := value.Decode(b)
	if err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseStorage, errors.KindOf(err), err, "decode stored value")
	}
	return v, nil
}
