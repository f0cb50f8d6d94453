package scene

// Grid shape of the reveal.
const (
	Columns  = 5
	MinSlots = 25
)

type Tier int

const (
	TierGold Tier = iota
	TierPurple
)

func (t Tier) String() string {
	if t == TierGold {
		return "gold"
	}
	return "purple"
}

// TierForRow: the first row is gold, every other row purple.
func TierForRow(row int) Tier {
	if row == 0 {
		return TierGold
	}
	return TierPurple
}

// Slot is a render-only grid position. Team is nil for an empty slot.
type Slot struct {
	Index int
	Row   int
	Col   int
	Tier  Tier
	Team  *Team
}

func (s Slot) Empty() bool { return s.Team == nil }

// SlotCount is max(len(teams), MinSlots).
func SlotCount(teamCount int) int {
	if teamCount > MinSlots {
		return teamCount
	}
	return MinSlots
}

// Rows returns how many grid rows are needed for n slots.
func Rows(n int) int {
	return (n + Columns - 1) / Columns
}

// Slots assigns teams to grid positions row-major.
func (l *ScrimList) Slots() []Slot {
	var teams []Team
	if l != nil {
		teams = l.Teams
	}
	n := SlotCount(len(teams))
	slots := make([]Slot, n)
	for i := range slots {
		row, col := i/Columns, i%Columns
		slots[i] = Slot{Index: i, Row: row, Col: col, Tier: TierForRow(row)}
		if i < len(teams) {
			slots[i].Team = &teams[i]
		}
	}
	return slots
}
