package engine

// AdvanceRayTick advances every in-flight ray by exactly one tile and
// resolves the ones that terminate. It performs at most one tile of travel
// per call; the external clock decides the cadence. Returns the number of
// rays still in flight.
//
// The destination check order is fixed: transparent wall, flat mirror, the
// two slope mirrors, then any other occupant terminates the ray against it.
func (e *GameEngine) AdvanceRayTick() int {
	if len(e.rays) == 0 {
		return 0
	}

	alive := e.rays[:0]
	terminated := false

	for _, ray := range e.rays {
		next := ray.Pos.Add(ray.Dir)
		tile := e.grid.At(next)
		if tile == nil {
			// Off the board: gone without effect.
			terminated = true
			continue
		}

		if obj := tile.Object; obj != nil {
			switch obj.Kind {
			case WallWithHoles:
				ray.Pos = next
			case Mirror:
				ray.Pos = next
				ray.Dir = ray.Dir.Neg()
			case MirrorSlopeUp: // "/"
				ray.Pos = next
				ray.Dir = Vec{-ray.Dir.Y, -ray.Dir.X}
			case MirrorSlopeDown: // "\"
				ray.Pos = next
				ray.Dir = Vec{ray.Dir.Y, ray.Dir.X}
			default:
				e.applyRayAction(ray, next)
				terminated = true
				continue
			}
		} else {
			ray.Pos = next
		}
		alive = append(alive, ray)
	}

	e.rays = alive
	if terminated {
		// A terminal effect may have vacated a stepped-on sapling tile.
		e.handleSaplings(true)
	}
	return len(e.rays)
}

// applyRayAction executes a terminated ray's action against the shootee at
// target. Plain walls absorb rays untouched; every other occupant is fair
// game.
func (e *GameEngine) applyRayAction(ray Ray, target Vec) {
	tile := e.grid.At(target)
	if tile == nil || tile.Object == nil {
		return
	}
	if tile.Object.Kind == Wall {
		return
	}

	switch ray.Effect {
	case SwapWithShooter:
		st := e.grid.At(ray.Shooter)
		if st == nil {
			return
		}
		st.Object, tile.Object = tile.Object, st.Object

	case DuplicateShootee:
		// The copy appears on the gun's own tile, if something has vacated
		// it since the shot. The shootee itself is unaffected.
		ot := e.grid.At(ray.Origin)
		if ot != nil && ot.Object == nil {
			ot.Object = NewObjectFromSpec(tile.Object.Spec())
		}

	case TurnInto:
		if ray.Target != nil {
			tile.Object = NewObjectFromSpec(*ray.Target)
		}

	case TurnIntoTurnInto:
		// The new gun remembers what it just replaced: it turns its next
		// shootee into the previous one, full payload included.
		spec := tile.Object.Spec()
		tile.Object = NewObjectFromSpec(ObjectSpec{
			Kind: Raygun,
			Gun:  &GunSpec{Effect: TurnInto, Target: &spec},
		})
	}
}
