package lichess

type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Title    string `json:"title"`
}

func (p Profile) IsBot() bool {
	return p.Title == "BOT"
}

// Event is one line of the account-wide notification feed.
type Event struct {
	Type      string     `json:"type"`
	Challenge *Challenge `json:"challenge,omitempty"`
	Game      *EventGame `json:"game,omitempty"`
}

type EventGame struct {
	ID     string `json:"id"`
	GameID string `json:"gameId,omitempty"`
}

type Challenge struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	Status      string      `json:"status"`
	Challenger  *User       `json:"challenger"`
	DestUser    *User       `json:"destUser"`
	Variant     Variant     `json:"variant"`
	Rated       bool        `json:"rated"`
	Speed       string      `json:"speed"`
	TimeControl TimeControl `json:"timeControl"`
	Color       string      `json:"color"`
}

func (c Challenge) Mode() string {
	if c.Rated {
		return "rated"
	}
	return "casual"
}

func (c Challenge) ChallengerName() string {
	if c.Challenger == nil {
		return ""
	}
	return c.Challenger.Name
}

func (c Challenge) ChallengerIsBot() bool {
	return c.Challenger != nil && c.Challenger.Title == "BOT"
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Rating int    `json:"rating"`
}

type Variant struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type TimeControl struct {
	Type      string `json:"type"`
	Limit     int    `json:"limit"`
	Increment int    `json:"increment"`
	Show      string `json:"show"`
}

// GameFull is the first message of a per-game feed.
type GameFull struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Rated      bool       `json:"rated"`
	Variant    Variant    `json:"variant"`
	Clock      *Clock     `json:"clock"`
	Speed      string     `json:"speed"`
	White      GamePlayer `json:"white"`
	Black      GamePlayer `json:"black"`
	InitialFen string     `json:"initialFen"`
	State      GameState  `json:"state"`
}

type Clock struct {
	Initial   int64 `json:"initial"`
	Increment int64 `json:"increment"`
}

type GamePlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Rating int    `json:"rating"`
}

// GameState carries clocks in milliseconds and the full move history in UCI.
type GameState struct {
	Type   string `json:"type"`
	Moves  string `json:"moves"`
	WTime  int64  `json:"wtime"`
	BTime  int64  `json:"btime"`
	WInc   int64  `json:"winc"`
	BInc   int64  `json:"binc"`
	Status string `json:"status"`
	Winner string `json:"winner,omitempty"`
}

// GameMessage decodes any per-game feed line far enough to dispatch on Type.
type GameMessage struct {
	Type string `json:"type"`
}
