package prompt

import "math/rand"

// openers are author-curated emotional hooks, keyed by trigger class.
// One is picked at random and handed to the pitch prompt so replies vary
// between otherwise identical queries.
var openers = map[string][]string{
	"lost": {
		"Even the strongest warriors lose their way sometimes — let's get you back on track!",
		"Feeling lost is just the first step to finding your real path.",
	},
	"energy": {
		"Energy isn't just physical — it's mental. Let's refuel both!",
		"Low energy? Time to reignite your fire!",
	},
	"doubt": {
		"Doubt is just the mind's way of testing your will. Prove it wrong!",
		"Believe in yourself for just one more day — it might be the day everything changes.",
	},
	"love": {
		"Love is the strongest force — and the best reason to surprise them.",
		"Some gifts speak louder than words — this could be one of them.",
	},
	"motivation": {
		"Motivation fades, discipline stays — let's make it happen today.",
		"Stay consistent, and results will come before you know it.",
	},
	"courage": {
		"Fear is temporary. Regret is forever — take the step now.",
		"True courage is acting in spite of fear.",
	},
}

var defaultOpeners = []string{
	"Great question — here's what I'd go for.",
	"I've got just the thing for you.",
}

// Opener returns a randomly chosen opener line for the trigger class,
// falling back to a neutral line for unknown classes.
func Opener(class string) string {
	lines, ok := openers[class]
	if !ok || len(lines) == 0 {
		lines = defaultOpeners
	}
	return lines[rand.Intn(len(lines))]
}
