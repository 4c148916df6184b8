package model

// MovieTickets pairs a movie with an aggregate count taken over the
// reservation ledger.  It is returned as-is by the reporting endpoint.
type MovieTickets struct {
	MovieID uint64 `json:"movie_id"`
	Title   string `json:"title"`
	Count   int64  `json:"count"`
}

// DailyTickets is the number of seats sold on one calendar day (UTC).
type DailyTickets struct {
	Day     string `json:"day"` // YYYY-MM-DD
	Tickets int64  `json:"tickets"`
}
