package power

import (
	"bytes"
	"encoding/json"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

var _ Source = &Static{}

// Static serves fixed descriptions. It is safe for concurrent use, so tests
// can swap the descriptions while an observer is polling.
type Static struct {
	mu    sync.Mutex
	descs []Description
	err   error
	calls int
}

// NewStatic returns a Static source serving ds.
func NewStatic(ds ...Description) *Static {
	return &Static{descs: ds}
}

func (s *Static) Name() string { return "static" }

// Set replaces the descriptions and the error returned by the next queries.
func (s *Static) Set(err error, ds ...Description) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descs = ds
	s.err = err
}

// Calls returns how many times Descriptions was called.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Static) Descriptions() ([]Description, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	ret := make([]Description, len(s.descs))
	copy(ret, s.descs)
	return ret, nil
}

// ParseStaticDescription decodes a Description from its JSON form, keyed like
// IOKit, e.g.
//
//	{"Name":"InternalBattery-0","Type":"InternalBattery","Current Capacity":87,"Is Charging":true}
func ParseStaticDescription(s string) (Description, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var ret Description
	if err := dec.Decode(&ret); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse power source description")
	}
	if ret == nil {
		return nil, pkgerrors.New("power source description must be a JSON object")
	}
	return ret, nil
}
