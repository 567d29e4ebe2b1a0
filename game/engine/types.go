package engine

// GridSize is the fixed board edge length. Every level is GridSize x GridSize.
const GridSize = 12

// Vec is an integer grid vector, used both for coordinates and directions.
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Neg returns -v.
func (v Vec) Neg() Vec { return Vec{-v.X, -v.Y} }

// Direction is a named cardinal direction as it appears on the wire.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the four cardinals in scan order.
var Directions = []Direction{Up, Down, Left, Right}

var directionVecs = map[Direction]Vec{
	Up:    {0, -1},
	Down:  {0, 1},
	Left:  {-1, 0},
	Right: {1, 0},
}

// Vec returns the unit vector for the direction, or the zero vector if d is
// not one of the four cardinals.
func (d Direction) Vec() Vec { return directionVecs[d] }

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	_, ok := directionVecs[d]
	return ok
}

// Kind identifies an object variant. The set is closed; every interaction
// site switches exhaustively over it so a new kind forces review of movement,
// ray, and growth rules alike.
type Kind string

const (
	Player          Kind = "player"
	Rock            Kind = "rock"
	Wall            Kind = "wall"
	Rope            Kind = "rope"
	Soap            Kind = "soap"
	Raygun          Kind = "raygun"
	Mirror          Kind = "mirror"
	MirrorSlopeUp   Kind = "mirror_slope_up"
	MirrorSlopeDown Kind = "mirror_slope_down"
	Tree            Kind = "tree"
	Axe             Kind = "axe"
	WallWithHoles   Kind = "wall_with_holes"
	Cheese          Kind = "cheese"
	Bunny           Kind = "bunny"
	Door            Kind = "door"
	Key             Kind = "key"
)

// Kinds lists every object kind, used by level validation.
var Kinds = []Kind{
	Player, Rock, Wall, Rope, Soap, Raygun, Mirror, MirrorSlopeUp,
	MirrorSlopeDown, Tree, Axe, WallWithHoles, Cheese, Bunny, Door, Key,
}

// CanMove reports whether an object of this kind may be relocated at all,
// whether on its own turn or by a push.
func (k Kind) CanMove() bool {
	switch k {
	case Player, Rock, Rope, Soap, Axe, Bunny, Key:
		return true
	case Wall, Raygun, Mirror, MirrorSlopeUp, MirrorSlopeDown, Tree,
		WallWithHoles, Cheese, Door:
		return false
	}
	return false
}

// GunEffect selects what a raygun's ray does to the object it terminates
// against.
type GunEffect string

const (
	SwapWithShooter  GunEffect = "swap_with_shooter"
	DuplicateShootee GunEffect = "duplicate"
	TurnInto         GunEffect = "turn_into"
	TurnIntoTurnInto GunEffect = "turn_into_turn_into"
)

// Valid reports whether e is a known gun effect.
func (e GunEffect) Valid() bool {
	switch e {
	case SwapWithShooter, DuplicateShootee, TurnInto, TurnIntoTurnInto:
		return true
	}
	return false
}

// ObjectSpec describes an object to be created: its kind and, for rayguns,
// the gun payload. Specs nest through GunSpec.Target, so a turn-into gun can
// produce further guns to arbitrary depth.
type ObjectSpec struct {
	Kind Kind     `json:"kind"`
	Gun  *GunSpec `json:"gun,omitempty"`
}

// GunSpec is a raygun payload. Target is set only for the TurnInto effect.
type GunSpec struct {
	Effect GunEffect   `json:"effect"`
	Target *ObjectSpec `json:"target,omitempty"`
}

// Clone deep-copies the spec, including nested gun payloads.
func (s ObjectSpec) Clone() ObjectSpec {
	out := ObjectSpec{Kind: s.Kind}
	if s.Gun != nil {
		g := s.Gun.Clone()
		out.Gun = &g
	}
	return out
}

// Clone deep-copies the gun payload.
func (g GunSpec) Clone() GunSpec {
	out := GunSpec{Effect: g.Effect}
	if g.Target != nil {
		t := g.Target.Clone()
		out.Target = &t
	}
	return out
}

// Object is a thing occupying a tile. The processed/moved flags are per-turn
// bookkeeping: processed means the object already had its chance to act
// during this player action, moved means it already changed position. Both
// are cleared at the start of every player action.
type Object struct {
	Kind Kind     `json:"kind"`
	Gun  *GunSpec `json:"gun,omitempty"`

	processed bool
	moved     bool
}

// NewObject creates a plain object of the given kind.
func NewObject(kind Kind) *Object { return &Object{Kind: kind} }

// NewObjectFromSpec creates an object from a spec, deep-copying the gun
// payload so level templates are never aliased.
func NewObjectFromSpec(spec ObjectSpec) *Object {
	c := spec.Clone()
	return &Object{Kind: c.Kind, Gun: c.Gun}
}

// Spec returns a deep copy of the object's creation spec.
func (o *Object) Spec() ObjectSpec {
	return ObjectSpec{Kind: o.Kind, Gun: o.Gun}.Clone()
}

// GroundType is the terrain layer of a tile, independent of any object on it.
type GroundType string

const (
	Grass   GroundType = "grass"
	Sapling GroundType = "sapling"
	Ice     GroundType = "ice"
)

// Ground is a tile's terrain. SteppedOn is meaningful only for saplings: a
// stepped-on sapling grows into a tree once vacated.
type Ground struct {
	Type      GroundType `json:"type"`
	SteppedOn bool       `json:"stepped_on,omitempty"`
}

// Exit marks a tile from which a player moving in Direction leaves for
// another level instead of making a normal move.
type Exit struct {
	Direction Direction `json:"direction"`
	Level     string    `json:"level"`
}

// Tile is one grid cell: at most one object, a ground variant, and an
// optional exit descriptor.
type Tile struct {
	Object *Object `json:"object,omitempty"`
	Ground Ground  `json:"ground"`
	Exit   *Exit   `json:"exit,omitempty"`
}

// Ray is an in-flight effect carrier. Rays live outside the grid and exist
// only between a shoot command and their resolution.
type Ray struct {
	Pos     Vec         `json:"pos"`
	Dir     Vec         `json:"dir"`
	Origin  Vec         `json:"origin"`  // the emitting raygun's tile
	Shooter Vec         `json:"shooter"` // the player's tile at shoot time
	Effect  GunEffect   `json:"effect"`
	Target  *ObjectSpec `json:"target,omitempty"`
}

// GameState is a point-in-time snapshot of a session, safe to serialize
// while the engine keeps running: the grid it carries is a deep copy.
type GameState struct {
	Level        string   `json:"level"`
	LevelName    string   `json:"level_name"`
	Grid         *Grid    `json:"grid"`
	Rays         []Ray    `json:"rays"`
	RaysInFlight bool     `json:"rays_in_flight"`
	CheeseBanked int      `json:"cheese_banked"`
	CheeseLevel  int      `json:"cheese_level"`
	Steps        int      `json:"steps"`
	Resets       int      `json:"resets"`
	Message      string   `json:"message,omitempty"`
	Diagnostics  []string `json:"diagnostics,omitempty"`
}
