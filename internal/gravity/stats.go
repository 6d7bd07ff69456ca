package gravity

import "github.com/Ryneqq/nbody/internal/dynamo"

func TotalMass(bodies []Body) float64 {
	total := 0.0
	for _, b := range bodies {
		total += b.mass
	}
	return total
}

func TotalMomentum(bodies []Body) dynamo.Vector {
	var p dynamo.Vector
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

func KineticEnergy(bodies []Body) float64 {
	e := 0.0
	for _, b := range bodies {
		e += b.KineticEnergy()
	}
	return e
}

// PotentialEnergy sums -G*mi*mj/r over distinct pairs, skipping coincident
// pairs like GravityForce does.
func PotentialEnergy(bodies []Body) float64 {
	pe := 0.0
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[i].Distance(bodies[j])
			if r == 0 {
				continue
			}
			pe -= bodies[i].params.G * bodies[i].mass * bodies[j].mass / r
		}
	}
	return pe
}
