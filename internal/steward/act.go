package steward

import "context"

// Result is what the intervention endpoint reports back.
type Result struct {
	Success bool   `json:"success"`
	Details string `json:"details"`
}

// Actor applies interventions through the admin API.
type Actor struct {
	api client
}

// NewActor returns an Actor that authenticates with adminKey.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{api: newClient(baseURL, adminKey)}
}

// Act posts iv. A rejected intervention is an error carrying the HTTP status.
func (a *Actor) Act(ctx context.Context, iv *Intervention) (Result, error) {
	var res Result
	err := a.api.post(ctx, "/api/v1/intervention", iv, &res)
	return res, err
}
