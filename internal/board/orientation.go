package board

import "github.com/notnil/chess"

// Orientation modes accepted by Resolve.
const (
	ModeSide  = "side"
	ModeWhite = "white"
	ModeBlack = "black"
)

// Resolve returns the colour drawn at the bottom of the diagram. "white" and
// "black" fix the perspective; any other mode, including "side" and unknown
// strings, follows the side to move.
func Resolve(mode string, turn chess.Color) chess.Color {
	switch mode {
	case ModeWhite:
		return chess.White
	case ModeBlack:
		return chess.Black
	default:
		return turn
	}
}
