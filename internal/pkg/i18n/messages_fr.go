package i18n

import "golang.org/x/text/language"

func init() {
	register(language.French,
		"C'est à vous de jouer dans la partie {game}",
		"Bonjour {name},\n\nC'est à votre tour dans la partie {game} et aucun coup n'a été joué depuis un moment.\n"+
			"Sans coup de votre part dans les {hours} heures, la partie sera abandonnée en votre nom.\n\n{link}\n")
}
