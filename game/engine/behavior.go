package engine

// handleSaplings runs the sapling rule over every tile: a stepped-on, vacant
// sapling grows into a tree (only when canGrow permits it), and an occupied
// fresh sapling is marked stepped-on. Mid-cascade callers pass canGrow=false
// so no tree ever spawns under an object still in transit; the turn loop and
// the ray propagator pass true exactly once per turn or terminating tick.
func (e *GameEngine) handleSaplings(canGrow bool) {
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			t := e.grid.At(Vec{x, y})
			if t.Ground.Type != Sapling {
				continue
			}
			switch {
			case t.Ground.SteppedOn && t.Object == nil && canGrow:
				t.Ground = Ground{Type: Grass}
				t.Object = NewObject(Tree)
			case !t.Ground.SteppedOn && t.Object != nil:
				t.Ground.SteppedOn = true
			}
		}
	}
}

// handleBunnies gives every unprocessed bunny one chance to flee. A bunny is
// seen from a direction if the first occupied tile along it is a player;
// directions whose retreat tile is blocked by something immovable are
// discarded. If exactly one net threat direction remains, the bunny retreats
// one step away from it through the movement resolver.
func (e *GameEngine) handleBunnies() {
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			p := Vec{x, y}
			obj := e.grid.At(p).Object
			if obj == nil || obj.Kind != Bunny || obj.processed || obj.moved {
				continue
			}
			obj.processed = true

			var sum Vec
			for _, d := range Directions {
				dv := d.Vec()
				if !e.playerInSight(p, dv) {
					continue
				}
				back := e.grid.At(p.Sub(dv))
				if back == nil {
					continue
				}
				if back.Object != nil && !back.Object.Kind.CanMove() {
					continue
				}
				sum = sum.Add(dv)
			}

			// Exactly one net cardinal: the retreat is unambiguous.
			if abs(sum.X)+abs(sum.Y) == 1 {
				e.resolveMove(p, sum.Neg(), false)
			}
		}
	}
}

// playerInSight walks outward from p in dir and reports whether the first
// occupied tile holds a player. Running off the board means nothing is seen.
func (e *GameEngine) playerInSight(from, dir Vec) bool {
	for p := from.Add(dir); ; p = p.Add(dir) {
		t := e.grid.At(p)
		if t == nil {
			return false
		}
		if t.Object != nil {
			return t.Object.Kind == Player
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
