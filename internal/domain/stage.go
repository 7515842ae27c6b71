package domain

// Stage is one elimination round of the bracket, named by the number of
// competitors entering it. StageChampion is the terminal record a
// season's winner advances into; it is never paired.
type Stage string

const (
	StageRoundOf32 Stage = "32"
	StageRoundOf16 Stage = "16"
	StageRoundOf8  Stage = "8"
	StageRoundOf4  Stage = "4"
	StageFinal     Stage = "2"
	StageChampion  Stage = "champion"
)

// BracketStages lists the playable stages in bracket order.
var BracketStages = []Stage{
	StageRoundOf32,
	StageRoundOf16,
	StageRoundOf8,
	StageRoundOf4,
	StageFinal,
}

var nextStage = map[Stage]Stage{
	StageRoundOf32: StageRoundOf16,
	StageRoundOf16: StageRoundOf8,
	StageRoundOf8:  StageRoundOf4,
	StageRoundOf4:  StageFinal,
	StageFinal:     StageChampion,
}

// Next returns the stage winners advance into. ok is false for
// StageChampion and unknown values.
func (s Stage) Next() (Stage, bool) {
	n, ok := nextStage[s]
	return n, ok
}

// Playable reports whether the stage holds matches.
func (s Stage) Playable() bool {
	_, ok := nextStage[s]
	return ok
}

// Valid reports whether s is a known stage label.
func (s Stage) Valid() bool {
	return s == StageChampion || s.Playable()
}

var stageNames = map[Stage]string{
	StageRoundOf32: "round of 32",
	StageRoundOf16: "round of 16",
	StageRoundOf8:  "round of 8",
	StageRoundOf4:  "semifinals",
	StageFinal:     "final",
	StageChampion:  "champion",
}

// DisplayName returns a human-readable label for the stage.
func (s Stage) DisplayName() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return string(s)
}

// stageOrder ranks stages for "best result" queries; higher is deeper
// into the bracket.
var stageOrder = map[Stage]int{
	StageRoundOf32: 1,
	StageRoundOf16: 2,
	StageRoundOf8:  3,
	StageRoundOf4:  4,
	StageFinal:     5,
	StageChampion:  6,
}

// Order returns the bracket depth of the stage, 0 for unknown values.
func (s Stage) Order() int {
	return stageOrder[s]
}
