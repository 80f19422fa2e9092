package engine

import "time"

// fixedClock parses an RFC 3339 instant and keeps its offset.
type fixedClock struct {
	at string
}

func (c fixedClock) Now() time.Time {
	t, err := time.Parse(time.RFC3339, c.at)
	if err != nil {
		panic(err)
	}
	return t
}
