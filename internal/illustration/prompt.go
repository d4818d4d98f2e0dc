package illustration

import (
	"fmt"
	"strings"
	"time"

	"inkcal/internal/model"
)

// Mode selects what the illustration is about.
type Mode string

const (
	ModeEvents Mode = "events"
	ModeFact   Mode = "fact"
	ModeAuto   Mode = "auto"
)

// Resolve turns ModeAuto into a concrete mode for day: events on Monday,
// Wednesday, Friday and Sunday, the fact on the other days.
func (m Mode) Resolve(day time.Time) Mode {
	if m != ModeAuto {
		return m
	}
	if (int(day.Weekday())+6)%7%2 == 0 {
		return ModeEvents
	}
	return ModeFact
}

const relaxedPrompt = "Create a pencil drawn cute and relaxed cat in Winnie the Pooh style with only the colors red, black and white. " +
	"The cat should look peaceful and happy with no obligations."

// Mood describes how busy a day with n events feels.
func Mood(n int) string {
	switch {
	case n <= 2:
		return "happy and organized"
	case n <= 4:
		return "busy but cheerful"
	default:
		return "overwhelmed but determined"
	}
}

// EventsPrompt asks for an animal reflecting today's events, or a relaxed
// cat on an empty day.
func EventsPrompt(events []model.CalendarEvent) string {
	if len(events) == 0 {
		return relaxedPrompt
	}
	shown := events
	if len(shown) > 3 {
		shown = shown[:3]
	}
	parts := make([]string, len(shown))
	for i, e := range shown {
		parts[i] = e.Time + ": " + e.Summary
	}
	return fmt.Sprintf("Create a pencil drawn cute animal in Winnie the Pooh style with only the colors red, black and white. "+
		"The animal should look %s and reflect a day with one of these activities: %s", Mood(len(events)), strings.Join(parts, "; "))
}

// animals maps keywords (Danish and English) found in a fact to the scene
// drawn for it. The first matching row wins.
var animals = []struct {
	keywords []string
	scene    string
}{
	{[]string{"honning", "honey", "bi", "bee"}, "happy bee wearing a red bow tie, surrounded by hexagonal honey patterns"},
	{[]string{"elefant", "elephant"}, "wise elephant with red ears, touching the ground with its trunk"},
	{[]string{"delfin", "dolphin"}, "playful dolphin with a red hat, jumping through water waves"},
	{[]string{"fugl", "bird", "kolibri", "hummingbird"}, "tiny hummingbird with red wings, hovering near a flower"},
	{[]string{"kat", "cat"}, "curious cat with red collar, eyes wide and glowing"},
	{[]string{"pingvin", "penguin"}, "cheerful penguin wearing a red scarf, flippers spread wide"},
	{[]string{"ugle", "owl"}, "scholarly owl with red glasses, perched on a book"},
	{[]string{"løb", "run", "hurtig", "fast"}, "speedy rabbit with red running shoes, mid-leap"},
	{[]string{"vand", "water", "hav", "ocean"}, "friendly whale with a red spout, swimming peacefully"},
	{[]string{"træ", "tree", "gren", "branch"}, "curious squirrel with a red acorn, sitting on a tree branch"},
}

const defaultScene = "wise bear wearing red professor glasses, pointing at something interesting"

// SceneFor picks the animal scene for a fact by substring match on its
// lowercased text.
func SceneFor(fact string) string {
	lower := strings.ToLower(fact)
	for _, a := range animals {
		for _, k := range a.keywords {
			if strings.Contains(lower, k) {
				return a.scene
			}
		}
	}
	return defaultScene
}

// FactPrompt asks for an e-ink friendly three-colour drawing illustrating
// fact.
func FactPrompt(fact string) string {
	excerpt := fact
	if r := []rune(fact); len(r) > 100 {
		excerpt = string(r[:100])
	}
	return fmt.Sprintf(`Create a simple educational illustration using ONLY these exact colors: pure red (#FF0000), pure black (#000000), and pure white (#FFFFFF). NO other colors allowed.

Draw a %s in a simple Winnie the Pooh art style. The animal should look educational and whimsical, illustrating this fun fact: "%s..."

Important requirements for e-ink display:
- Use ONLY solid red, black, and white areas
- No gradients, no gray tones, no color mixing
- Clean, simple shapes with bold black outlines
- Red used for clothing, accessories, or key details
- White background with high contrast
- Educational and child-friendly appearance

The illustration should make the fun fact come alive and be easily understood by children.`, SceneFor(fact), excerpt)
}
