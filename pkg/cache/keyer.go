package cache

import "time"

// Keyer builds cache keys.
type Keyer interface {
	// RouteKey identifies a routing result.
	RouteKey(inputHash string, opts RouteKeyOpts) string

	// RenderKey identifies a rendered artifact of a routing result, by the
	// hash of the solution it was drawn from.
	RenderKey(solutionHash string, opts RenderKeyOpts) string
}

// RouteKeyOpts are the router options that change a routing result.
type RouteKeyOpts struct {
	Budget           time.Duration `json:"budget"`
	MaxRequeues      int           `json:"max_requeues"`
	CollisionPenalty int           `json:"collision_penalty"`
}

// RenderKeyOpts are the options that change a rendered artifact.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Labels bool   `json:"labels"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) RouteKey(inputHash string, opts RouteKeyOpts) string {
	return hashKey("route", inputHash, opts)
}

func (DefaultKeyer) RenderKey(solutionHash string, opts RenderKeyOpts) string {
	return hashKey("render", solutionHash, opts)
}
