package models

import (
	"sync"
)

// Store is the single owner of a run's UASData. Readers only ever see copies.
type Store struct {
	data  UASData
	mutex sync.RWMutex
}

// NewStore will return store initialized with a copy of data
func NewStore(data *UASData) *Store {
	s := &Store{}
	if data != nil {
		s.data = *data
	}
	return s
}

// Snapshot will return a consistent copy of the whole record
func (s *Store) Snapshot() UASData {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data
}

// Update will mutate the record under the write lock
func (s *Store) Update(fn func(*UASData)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(&s.data)
}

// UpdateLocation will mutate only the location block under the write lock
func (s *Store) UpdateLocation(fn func(*Location)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(&s.data.Location)
}

// Location returns a copy of the current location block
func (s *Store) Location() Location {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data.Location
}
