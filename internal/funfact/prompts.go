package funfact

type prompts struct {
	// topic and event are format strings taking the topic or the event
	// summary.
	topic  string
	event  string
	topics []string
	facts  []string
}

var danish = prompts{
	topic: "Du er en fantasifuld historiefortæller for børn. Fortæl kun et meget kort, muntert og fantasifuldt fun fact for børn på maksimalt 1-2 linjer om %s. " +
		"Fakta skal sætte gang i tanker og leg. Start direkte med fakta, ikke med 'Her er et fun fact'. " +
		"Brug ikke markdown formatting.",
	event: "Du er en fantasifuld historiefortæller for børn. Opgaven er: '%s'. " +
		"Skriv kun et meget kort, muntert og fantasifuldt fun fact for børn på maksimalt 1-2 linjer. " +
		"Fakta skal sætte gang i tanker og leg, og bør relateres til det sjove eller mærkelige ved emnet. " +
		"Start direkte med fakta uden indledning som 'Vidste du' eller 'Her er et fun fact'. " +
		"Brug ikke markdown formatting.",
	topics: []string{
		"et mærkeligt dyr",
		"en sjov ting fra rummet",
		"en hemmelighed om vand",
		"en rekord om legetøj",
	},
	facts: []string{
		"Vidste du at elefanter kan 'høre' med deres fødder? De føler vibrationer i jorden!",
		"En gruppe flamingoer kaldes en 'flamboyance' - hvor flot er det ikke?",
		"Kolibrier er de eneste fugle der kan flyve baglæns!",
		"Delfiner giver sig selv navne ved at lave unikke fløjtelyde!",
		"Bier kommunikerer ved at danse - de viser retning og afstand til blomster!",
		"Kattes øjne lyser i mørket fordi de har et spejl bag øjnene!",
		"Pingviner kan springe næsten 3 meter op af vandet!",
		"En gruppe ugler kaldes en 'parliament' - som et parlament!",
	},
}

var english = prompts{
	topic: "You are an imaginative storyteller for children. Tell one very short, cheerful and imaginative fun fact for children of at most 1-2 lines about %s. " +
		"The fact should spark thoughts and play. Start directly with the fact, not with 'Here is a fun fact'. " +
		"Do not use markdown formatting.",
	event: "You are an imaginative storyteller for children. Today's task is: '%s'. " +
		"Write only one very short, cheerful and imaginative fun fact for children of at most 1-2 lines. " +
		"The fact should spark thoughts and play and relate to something funny or strange about the topic. " +
		"Start directly with the fact, without an intro like 'Did you know' or 'Here is a fun fact'. " +
		"Do not use markdown formatting.",
	topics: []string{
		"a strange animal",
		"a funny thing from space",
		"a secret about water",
		"a record about toys",
	},
	facts: []string{
		"Elephants can 'hear' with their feet by feeling vibrations in the ground!",
		"A group of flamingos is called a 'flamboyance' - how fancy is that?",
		"Hummingbirds are the only birds that can fly backwards!",
		"Dolphins give themselves names by making unique whistles!",
		"Bees talk by dancing - they show the way to the flowers!",
		"Cats' eyes glow in the dark because they have a mirror behind them!",
		"Penguins can jump almost 3 metres out of the water!",
		"A group of owls is called a 'parliament'!",
	},
}

func promptsFor(locale string) prompts {
	if locale == "en" {
		return english
	}
	return danish
}
