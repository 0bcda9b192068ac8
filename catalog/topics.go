package catalog

import "math/rand"

// Topics is the curated debate topic list offered before a session starts.
// Free-text topics are also accepted by the session machine; this list is
// only a convenience.
var Topics = []string{
	"Social media does more harm than good",
	"School uniforms should be mandatory",
	"Homework should be banned in elementary schools",
	"Video games cause violence in teenagers",
	"Climate change is the most pressing issue of our time",
	"Artificial intelligence will replace most human jobs",
	"Online learning is better than traditional classroom education",
	"Standardized testing should be eliminated",
	"The voting age should be lowered to 16",
	"Fast food restaurants should be banned near schools",
}

// RandomTopic picks one curated topic.
func RandomTopic() string {
	return Topics[rand.Intn(len(Topics))]
}
