package transmitter

import (
	"github.com/TechGeek001/jhu-capstone/pkg/models"
)

// Counters are the per message type sequence counters carried in transport headers.
// Only the orchestrator loop mutates them.
type Counters struct {
	values [models.NumMessageKinds]uint8
}

// Next returns the counter value the next message of kind is sent with
func (c *Counters) Next(kind models.MessageKind) uint8 { return c.values[kind] }

// Advance moves the counter of kind forward by one, wrapping at 256
func (c *Counters) Advance(kind models.MessageKind) { c.values[kind]++ }

// Values returns a copy of all counters indexed by kind
func (c *Counters) Values() [models.NumMessageKinds]uint8 { return c.values }
