package engine

// resolveMove attempts to move the object at src one step in dir, cascading
// into whatever occupies the destination. pushed marks moves caused by
// another object pushing into src; only non-pushed moves may drag ropes.
// It reports whether the object left src, by relocation or consumption.
//
// Recursion depth is bounded by the grid edge: every recursive call moves one
// tile further along dir, and the chain ends at the latest off the board.
func (e *GameEngine) resolveMove(src, dir Vec, pushed bool) bool {
	tile := e.grid.At(src)
	if tile == nil || tile.Object == nil {
		return false
	}
	obj := tile.Object

	// A player stepping off an exit tile in the exit's direction leaves the
	// level instead of moving. Terminal: the new grid replaces this one.
	if obj.Kind == Player && tile.Exit != nil && tile.Exit.Direction.Vec() == dir {
		if err := e.SwitchLevel(tile.Exit.Level); err == nil {
			return true
		}
		// Unknown destination: the exit is inert and the move proceeds
		// normally. Level diagnostics flag this at load time.
	}

	if !obj.Kind.CanMove() {
		return false
	}

	dst := e.grid.slideDestination(src, dir)

	// displaced holds a soap taken off the destination; it springs back onto
	// the mover's vacated tile after the move completes.
	var displaced *Object

	if dtile := e.grid.At(dst); dtile != nil && dtile.Object != nil {
		occ := dtile.Object
		switch {
		case occ.Kind == Soap:
			displaced = occ
			dtile.Object = nil
		case obj.Kind == Axe && occ.Kind == Tree:
			dtile.Object = nil
		case obj.Kind == Player && occ.Kind == Cheese:
			dtile.Object = nil
			e.cheeseLevel++
		case obj.Kind == Key && occ.Kind == Door:
			// Key and door annihilate; the key is consumed, not relocated.
			dtile.Object = nil
			tile.Object = nil
			return true
		default:
			e.resolveMove(dst, dir, true)
			if e.switched {
				return false
			}
		}

		// A deeper push may have sprung a soap back into our destination;
		// it still has to end up behind the mover, not block it.
		if displaced == nil {
			if dtile := e.grid.At(dst); dtile != nil && dtile.Object != nil && dtile.Object.Kind == Soap {
				displaced = dtile.Object
				dtile.Object = nil
			}
		}
	}

	dtile := e.grid.At(dst)
	if dtile == nil || dtile.Object != nil {
		// Chain bottomed out (wall, off-board, or unresolvable block): the
		// whole chain stays put, no partial pushes.
		return false
	}

	dtile.Object = obj
	tile.Object = nil
	obj.moved = true
	if displaced != nil {
		tile.Object = displaced
	}

	// Mark any sapling the cascade stepped on, without letting it grow
	// mid-transit. Growth happens once per whole turn.
	e.handleSaplings(false)

	if !pushed {
		// Motion away from a rope drags it along, and a moving rope drags
		// whatever sits behind it. Recursing with pushed=false keeps the
		// pull walking down arbitrarily long rope chains.
		behind := src.Sub(dir)
		if btile := e.grid.At(behind); btile != nil && btile.Object != nil &&
			(btile.Object.Kind == Rope || obj.Kind == Rope) {
			e.resolveMove(behind, dir, false)
		}
	}
	return true
}
