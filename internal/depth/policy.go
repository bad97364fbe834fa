package depth

// Directive is the navigation instruction derived from a ZoneReport.
type Directive int

const (
	// DirectiveClear means the path ahead is open; nothing is announced.
	DirectiveClear Directive = iota
	// DirectiveStop means an obstacle is directly ahead within stopping
	// distance.
	DirectiveStop
	// DirectiveWarnLeft means an obstacle on the left; veer right.
	DirectiveWarnLeft
	// DirectiveWarnRight means an obstacle on the right; veer left.
	DirectiveWarnRight
)

// String returns the directive name for logging and API responses.
func (d Directive) String() string {
	switch d {
	case DirectiveStop:
		return "stop"
	case DirectiveWarnLeft:
		return "warn_left"
	case DirectiveWarnRight:
		return "warn_right"
	default:
		return "clear"
	}
}

// Policy maps zone distances to directives.
type Policy struct {
	// StopMM is the center-zone distance below which the user must stop.
	StopMM int32
	// WarnMM is the side-zone distance below which a veer warning fires.
	WarnMM int32
}

// DefaultPolicy returns the shipped distance thresholds: stop at 90cm,
// warn at 1.5m.
func DefaultPolicy() Policy {
	return Policy{StopMM: 900, WarnMM: 1500}
}

// Decide evaluates the report against the policy. The rules are mutually
// exclusive and checked in fixed priority order; the first match wins:
//
//  1. center closer than StopMM        -> stop
//  2. only the left side inside WarnMM -> warn left
//  3. only the right side inside WarnMM -> warn right
//  4. otherwise                        -> clear
//
// Zones reporting UnknownDistance naturally fall on the "far" side of
// every comparison.
func (p Policy) Decide(r ZoneReport) Directive {
	switch {
	case r.Center < p.StopMM:
		return DirectiveStop
	case r.Left < p.WarnMM && r.Right > p.WarnMM:
		return DirectiveWarnLeft
	case r.Right < p.WarnMM && r.Left > p.WarnMM:
		return DirectiveWarnRight
	default:
		return DirectiveClear
	}
}
