// Package projectile tracks in-flight shots between the defender and the grid.
package projectile

// Origin identifies who fired a projectile
type Origin uint8

const (
	OriginDefender Origin = iota // travels up from the defender row
	OriginEntity                 // travels down toward the defender row
)

func (o Origin) String() string {
	switch o {
	case OriginDefender:
		return "defender"
	case OriginEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Projectile is a shot in flight
// Remaining counts rounds until impact; Row is the visual position and
// moves one row per round toward TargetRow, holding there once reached
type Projectile struct {
	ID        uint64
	Origin    Origin
	Column    int
	Row       int
	TargetRow int
	Remaining int
	Active    bool
}

// step advances one round and reports arrival
func (p *Projectile) step() bool {
	p.Remaining--
	switch {
	case p.Row < p.TargetRow:
		p.Row++
	case p.Row > p.TargetRow:
		p.Row--
	}
	return p.Remaining <= 0
}
