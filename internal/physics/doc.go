// Package physics is the point-mass simulation core.
//
// A [World] owns [Body] values and advances them with [World.Step], one
// externally supplied timestep per call:
//
//	w := physics.NewDefaultWorld()
//	b, err := physics.NewBody(physics.Vec(0, 10), physics.Vector{}, 1.0)
//	if err != nil {
//	    return err
//	}
//	w.AddBody(b)
//	w.Step(0.1)
//
// Bodies have no extent. Contact between two bodies is a distance test
// ([CheckCollision]) and the response is a single normal impulse
// ([ResolveCollision]). The world never tests pairs on its own; pair
// selection belongs to the driver.
//
// The package has no rendering or timing dependencies. Front ends read
// [World.Snapshot] rather than holding on to bodies.
package physics
