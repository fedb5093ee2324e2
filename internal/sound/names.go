package sound

// Cue names, also the base names of optional files under assets/sounds
const (
	RoundStart = "round_start"
	Correct    = "correct"
	RoundEnd   = "round_end"
	GameOver   = "game_over"
)
