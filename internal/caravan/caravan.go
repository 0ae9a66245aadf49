// Package caravan models traveling groups, their shared water pool, and the ambient,
// locator, and ledger operations the need resolver works through.
package caravan

import (
	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/world"
)

// Kind distinguishes caravans that pool their cargo from groups that do not.
type Kind uint8

const (
	KindVehicle Kind = iota // Shared cargo pool
	KindFoot                // Each member fends for themselves
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindFoot {
		return "foot"
	}
	return "vehicle"
}

// Caravan is an ordered group of members traveling together.
type Caravan struct {
	ID       uint64           `json:"id"`
	Name     string           `json:"name"`
	Kind     Kind             `json:"kind"`
	Position world.HexCoord   `json:"position"`
	Route    []world.HexCoord `json:"route,omitempty"`
	InFlight bool             `json:"in_flight"`
	Airship  bool             `json:"airship"` // Flies between stops instead of driving
	Dest     string           `json:"destination,omitempty"`

	Members   []*agents.Member `json:"members"`
	Logistics Logistics        `json:"logistics"`
}

// Entry is one thing in the shared pool with the member carrying it.
type Entry struct {
	Thing *items.Thing
	Owner *agents.Member
}

// SharesPool reports whether members draw from one shared cargo pool.
func (c *Caravan) SharesPool() bool {
	return c != nil && c.Kind == KindVehicle
}

// Pool lists every carried thing in member order, then inventory order.
// Destroyed things are left out.
func (c *Caravan) Pool() []Entry {
	var out []Entry
	for _, m := range c.Members {
		for _, t := range m.Inventory {
			if t == nil || t.Destroyed {
				continue
			}
			out = append(out, Entry{Thing: t, Owner: m})
		}
	}
	return out
}

// Living returns the members still alive.
func (c *Caravan) Living() []*agents.Member {
	var out []*agents.Member
	for _, m := range c.Members {
		if m.Alive {
			out = append(out, m)
		}
	}
	return out
}

// Member returns the member with id, or nil.
func (c *Caravan) Member(id agents.MemberID) *agents.Member {
	for _, m := range c.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Carrier returns the member cargo should be loaded onto: the first vehicle, else the
// first living member.
func (c *Caravan) Carrier() *agents.Member {
	for _, m := range c.Members {
		if m.Kind == agents.KindVehicle && m.Alive {
			return m
		}
	}
	for _, m := range c.Members {
		if m.Alive {
			return m
		}
	}
	return nil
}

// Advance moves the caravan one step along its route. Returns false once the route is
// exhausted.
func (c *Caravan) Advance() bool {
	if len(c.Route) == 0 {
		return false
	}
	c.Position = c.Route[0]
	c.Route = c.Route[1:]
	return true
}
