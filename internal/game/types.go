package game

import "time"

const (
	MsgConnected       = "connected"
	MsgGameCreated     = "gameCreated"
	MsgPlayerJoined    = "playerJoined"
	MsgPlayerLeft      = "playerLeft"
	MsgGameStarted     = "gameStarted"
	MsgGamePaused      = "gamePaused"
	MsgGameResumed     = "gameResumed"
	MsgGameUpdate      = "gameUpdate"
	MsgRealtimeUpdate  = "realtimeUpdate"
	MsgQuarterAdvanced = "quarterAdvanced"
	MsgScores          = "scores"
	MsgError           = "error"
)

// Message is the envelope every outbound payload travels in.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type PlayerView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	CountryCode string         `json:"countryCode"`
	CountryName string         `json:"countryName"`
	Connected   bool           `json:"connected"`
	Economy     CountryEconomy `json:"countryData"`
}

type GameState struct {
	ID              string       `json:"id"`
	HostID          string       `json:"hostPlayerId"`
	Quarter         int          `json:"currentQuarter"`
	QuarterStart    time.Time    `json:"quarterStartTime"`
	QuarterDuration float64      `json:"quarterDuration"`
	Started         bool         `json:"started"`
	Paused          bool         `json:"isPaused"`
	OilPrice        float64      `json:"globalOilPrice"`
	Players         []PlayerView `json:"players"`
	Log             []LogEntry   `json:"eventLog"`
	Events          []Event      `json:"triggeredEvents"`
}

type GameSummary struct {
	ID        string   `json:"id"`
	Quarter   int      `json:"currentQuarter"`
	Started   bool     `json:"started"`
	Paused    bool     `json:"isPaused"`
	OilPrice  float64  `json:"globalOilPrice"`
	Countries []string `json:"countries"`
}

type CooldownStatus struct {
	GlobalSeconds    float64 `json:"globalSeconds"`
	ActiveSkill      int     `json:"activeSkill"`
	CashDistribution int     `json:"cashDistribution"`
}

type GameCreated struct {
	GameID     string     `json:"gameId"`
	PlayerData PlayerView `json:"playerData"`
}

type PlayerJoined struct {
	PlayerData PlayerView   `json:"playerData"`
	AllPlayers []PlayerView `json:"allPlayers"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type GameUpdate struct {
	Players   []PlayerView `json:"players"`
	RecentLog []LogEntry   `json:"recentLog"`
	OilPrice  float64      `json:"oilPrice"`
}

type RealtimeUpdate struct {
	Quarter       int                       `json:"quarter"`
	Progress      float64                   `json:"progress"`
	RemainingTime float64                   `json:"remainingTime"`
	Cooldowns     map[string]CooldownStatus `json:"cooldowns"`
	Players       []PlayerView              `json:"players"`
	OilPrice      float64                   `json:"oilPrice"`
}

type QuarterUpdate struct {
	Quarter         int          `json:"quarter"`
	Players         []PlayerView `json:"players"`
	RecentLog       []LogEntry   `json:"recentLog"`
	FullLog         []LogEntry   `json:"fullLog"`
	OilPrice        float64      `json:"oilPrice"`
	TriggeredEvents []Event      `json:"triggeredEvents"`
}

type Scores struct {
	GameID  string       `json:"gameId"`
	Quarter int          `json:"quarter"`
	Scores  []ScoreEntry `json:"scores"`
}

// GameResult is what survives a game once it is swept.
type GameResult struct {
	GameID   string       `json:"gameId"`
	Quarters int          `json:"quarters"`
	Started  time.Time    `json:"createdAt"`
	Ended    time.Time    `json:"endedAt"`
	Scores   []ScoreEntry `json:"scores"`
}

type Connected struct {
	PlayerID string `json:"playerId"`
}

// ErrorData goes only to the connection whose request failed.
type ErrorData struct {
	Message string `json:"message"`
}
