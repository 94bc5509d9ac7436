package generator

import "github.com/google/uuid"

// NewID returns a random version 4 UUID read from the seeded identity stream.
//
// No uniqueness check is made, collisions are negligible
// at the population sizes a seed run produces.
func (s *Source) NewID() uuid.UUID {
	return uuid.Must(uuid.NewRandomFromReader(s.ids))
}
