package domain

// User identifies one participant. ID is stable for the life of a game.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Player is a seated user with their dealt hand and claimed missions.
// Dealt is fixed at deal time; Missions grows as the player claims.
type Player struct {
	User     User        `json:"user"`
	Dealt    []DealtCard `json:"dealt"`
	Missions []Mission   `json:"missions"`
}

// Seats is the fixed player count of a game in progress.
const Seats = 4
