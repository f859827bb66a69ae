package state

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StageSet is a stage mapping that remembers insertion order. The order is
// load-bearing: resolver tie-breaking and display order follow it, and it
// must survive a JSON round-trip because the file is the source of truth.
type StageSet struct {
	ids []string
	m   map[string]*Stage
}

// NewStageSet returns an empty set.
func NewStageSet() *StageSet {
	return &StageSet{m: map[string]*Stage{}}
}

// Len returns the number of stages.
func (s *StageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the stage IDs in insertion order. The slice is shared; callers
// must not mutate it.
func (s *StageSet) IDs() []string {
	if s == nil {
		return nil
	}
	return s.ids
}

// Get looks up a stage by ID.
func (s *StageSet) Get(id string) (*Stage, bool) {
	if s == nil {
		return nil, false
	}
	st, ok := s.m[id]
	return st, ok
}

// Has reports whether the ID exists.
func (s *StageSet) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Put inserts a stage, or replaces it in place keeping its position.
func (s *StageSet) Put(id string, st *Stage) {
	if _, exists := s.m[id]; !exists {
		s.ids = append(s.ids, id)
	}
	s.m[id] = st
}

// Delete removes a stage. Used to roll back a tentative insertion.
func (s *StageSet) Delete(id string) {
	if _, exists := s.m[id]; !exists {
		return
	}
	delete(s.m, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

// MarshalJSON writes the set as a JSON object in insertion order.
func (s *StageSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.m[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving its key order.
func (s *StageSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{', "stages"); err != nil {
		return err
	}
	*s = StageSet{m: map[string]*Stage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("stages: unexpected key token %v", tok)
		}
		var st Stage
		if err := dec.Decode(&st); err != nil {
			return fmt.Errorf("stages[%s]: %w", id, err)
		}
		s.Put(id, &st)
	}
	_, err := dec.Token() // closing brace
	return err
}

// DebaterSet is a debater mapping that remembers registration order, for the
// same reasons as StageSet: prompts and missing-response lists iterate
// debaters deterministically.
type DebaterSet struct {
	ids []string
	m   map[string]*Debater
}

// NewDebaterSet returns an empty set.
func NewDebaterSet() *DebaterSet {
	return &DebaterSet{m: map[string]*Debater{}}
}

// Len returns the number of debaters.
func (s *DebaterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the debater IDs in registration order. The slice is shared;
// callers must not mutate it.
func (s *DebaterSet) IDs() []string {
	if s == nil {
		return nil
	}
	return s.ids
}

// Get looks up a debater by ID.
func (s *DebaterSet) Get(id string) (*Debater, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.m[id]
	return d, ok
}

// Has reports whether the ID exists.
func (s *DebaterSet) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Put inserts a debater, or replaces it in place keeping its position.
func (s *DebaterSet) Put(id string, d *Debater) {
	if _, exists := s.m[id]; !exists {
		s.ids = append(s.ids, id)
	}
	s.m[id] = d
}

// MarshalJSON writes the set as a JSON object in registration order.
func (s *DebaterSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.m[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving its key order.
func (s *DebaterSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{', "debaters"); err != nil {
		return err
	}
	*s = DebaterSet{m: map[string]*Debater{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("debaters: unexpected key token %v", tok)
		}
		var d Debater
		if err := dec.Decode(&d); err != nil {
			return fmt.Errorf("debaters[%s]: %w", id, err)
		}
		s.Put(id, &d)
	}
	_, err := dec.Token() // closing brace
	return err
}

func expectDelim(dec *json.Decoder, want json.Delim, what string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%s: expected %q, got %v", what, want, tok)
	}
	return nil
}
