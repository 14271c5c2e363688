package i18n

import "golang.org/x/text/language"

func init() {
	register(language.German,
		"Du bist am Zug in Partie {game}",
		"Hallo {name},\n\nin Partie {game} bist du am Zug und hast schon länger nicht gezogen.\n"+
			"Wenn du nicht innerhalb von {hours} Stunden ziehst, wird die Partie für dich aufgegeben.\n\n{link}\n")
}
