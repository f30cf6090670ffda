// pkg/core/command.go
package core

// CommandKind names an actuator.
type CommandKind string

const (
	TurnSensor  CommandKind = "turnSensor"
	TurnWeapon  CommandKind = "turnWeapon"
	Fire        CommandKind = "fire"
	TurnBody    CommandKind = "turnBody"
	MoveForward CommandKind = "moveForward"
)

// Command is a single actuator instruction. Turns are in degrees (positive
// is clockwise), Fire carries the firepower, MoveForward the distance.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Value float64     `json:"value"`
}
