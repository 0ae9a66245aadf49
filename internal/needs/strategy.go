package needs

import "github.com/talgya/caravan-needs/internal/water"

// strategy is one step of the hydration fallback. apply reports success; the first
// success ends the chain and the member's thirst is set to full.
type strategy struct {
	name  string
	when  func(t *turn) bool // nil means always eligible
	apply func(t *turn) bool
}

// hydrationChain orders thirst sources from cleanest to dirtiest. Free ambient water
// sits after treated sources, so rain or a river ends the search before untreated or
// contaminated cargo is touched.
func (r *Resolver) hydrationChain() []strategy {
	critical := func(t *turn) bool {
		return t.m.Needs.Thirst.Level < r.Tuning.CriticalThirstBelow
	}
	return []strategy{
		{name: "treated stored", apply: r.drinkStored(water.Treated)},
		{name: "treated portable", apply: r.drinkPortable(water.Treated)},
		{name: "ambient", apply: r.drinkAmbient},
		{name: "untreated stored", apply: r.drinkStored(water.Untreated)},
		{name: "untreated portable", apply: r.drinkPortable(water.Untreated)},
		{name: "contaminated stored", when: critical, apply: r.drinkStored(water.Contaminated)},
		{name: "contaminated portable", when: critical, apply: r.drinkPortable(water.Contaminated)},
	}
}

func (r *Resolver) drinkStored(tier water.Tier) func(t *turn) bool {
	return func(t *turn) bool {
		_, s, ok := r.Locator.FindStored(t.c, tier)
		if !ok {
			return false
		}
		return r.Ledger.ConsumeStored(t.m, s, r.Tuning.StoredDrinkAmount) > 0
	}
}

func (r *Resolver) drinkPortable(tier water.Tier) func(t *turn) bool {
	return func(t *turn) bool {
		e, ok := r.Locator.FindPortable(t.c, tier)
		if !ok {
			return false
		}
		return r.Ledger.ConsumePortable(t.c, e, t.m, tier)
	}
}

func (r *Resolver) drinkAmbient(t *turn) bool {
	if !t.ambient.Available {
		return false
	}
	r.Ledger.Report(t.m, t.ambient.Tier)
	return true
}
