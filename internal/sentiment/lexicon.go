package sentiment

// Word valences on the AFINN -5..+5 scale, trimmed to vocabulary that shows
// up in patient messages. Entries are surface words; the scorer stems them
// at construction so inflections share a value.
var afinn = []struct {
	word    string
	valence int
}{
	// negative
	{"pain", -2}, {"painful", -2}, {"hurt", -2}, {"hurts", -2}, {"ache", -2},
	{"sick", -2}, {"ill", -2}, {"worse", -3}, {"worst", -3}, {"bad", -3},
	{"terrible", -3}, {"awful", -3}, {"horrible", -3}, {"severe", -2},
	{"scared", -2}, {"afraid", -2}, {"fear", -2}, {"worried", -3}, {"worry", -3},
	{"anxious", -2}, {"panic", -3}, {"depressed", -2}, {"sad", -2}, {"upset", -2},
	{"angry", -3}, {"frustrated", -2}, {"annoyed", -2}, {"disappointed", -2},
	{"unhappy", -2}, {"emergency", -2}, {"dying", -3}, {"die", -3}, {"death", -2},
	{"bleeding", -2}, {"suffer", -2}, {"suffering", -2}, {"unbearable", -3},
	{"excruciating", -3}, {"problem", -2}, {"wrong", -2}, {"error", -2},
	{"fail", -2}, {"failed", -2}, {"broken", -1}, {"tired", -2}, {"exhausted", -2},
	{"difficult", -1}, {"trouble", -2}, {"urgent", -1}, {"critical", -2},
	{"lonely", -2}, {"hopeless", -2}, {"miserable", -3}, {"stressed", -2},
	{"confused", -2}, {"overcharged", -2}, {"ridiculous", -3}, {"useless", -2},

	// positive
	{"good", 3}, {"great", 3}, {"better", 2}, {"best", 3}, {"fine", 2},
	{"happy", 3}, {"glad", 3}, {"thank", 2}, {"thanks", 2}, {"appreciate", 2},
	{"love", 3}, {"excellent", 3}, {"wonderful", 4}, {"help", 2}, {"helpful", 2},
	{"relieved", 2}, {"comfortable", 2}, {"improve", 2}, {"improved", 2},
	{"nice", 3}, {"welcome", 2}, {"easy", 1}, {"please", 1}, {"healthy", 2},
	{"recovered", 2}, {"amazing", 4}, {"perfect", 3},
}

var negators = []string{
	"not", "no", "never", "don't", "dont", "doesn't", "didn't", "isn't", "wasn't",
	"aren't", "can't", "cannot", "won't", "without", "nor", "hardly",
}

// Tokens that mark a message urgent regardless of score.
var urgentTerms = []string{
	"emergency", "urgent", "urgently", "immediately", "asap", "severe",
	"unbearable", "excruciating", "critical", "dying",
}
