package music

import "strings"

type queryGroup struct {
	name     string
	keywords []string
	query    string
}

// queryGroups se evalua en orden: el primer grupo que coincide gana.
var queryGroups = []queryGroup{
	{name: "study", keywords: []string{"study", "homework", "focus"}, query: "lofi hip hop study beats"},
	{name: "workout", keywords: []string{"workout", "exercise", "gym"}, query: "workout motivation music"},
	{name: "chill", keywords: []string{"chill", "relax", "calm"}, query: "chill vibes music"},
	{name: "party", keywords: []string{"party", "fun", "dance"}, query: "party dance music"},
	{name: "sleep", keywords: []string{"sleep", "bedtime"}, query: "sleep ambient music"},
	{name: "sad", keywords: []string{"sad", "down", "moody"}, query: "sad mood music"},
	{name: "happy", keywords: []string{"happy", "upbeat", "positive"}, query: "happy upbeat music"},
	{name: "rap", keywords: []string{"rap", "hip hop", "hiphop"}, query: "hip hop rap hits"},
	{name: "rock", keywords: []string{"rock"}, query: "rock classics"},
	{name: "electronic", keywords: []string{"electronic", "edm", "techno"}, query: "electronic dance hits"},
	{name: "jazz", keywords: []string{"jazz"}, query: "jazz essentials"},
	{name: "classical", keywords: []string{"classical", "piano", "orchestra"}, query: "classical music essentials"},
}

const defaultQuery = "trending hits"

// musicTriggers marca los mensajes de chat que piden musica.
var musicTriggers = []string{"music", "song", "playlist", "listen", "spotify", "tunes", "beats"}

// QueryFor elige la busqueda para un texto libre.
func QueryFor(input string) string {
	lower := strings.ToLower(input)
	for _, g := range queryGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.query
			}
		}
	}
	return defaultQuery
}

// IsMusicRequest indica si el mensaje menciona musica.
func IsMusicRequest(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range musicTriggers {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
