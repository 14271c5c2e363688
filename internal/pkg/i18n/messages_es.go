package i18n

import "golang.org/x/text/language"

func init() {
	register(language.Spanish,
		"Te toca mover en la partida {game}",
		"Hola {name},\n\nes tu turno en la partida {game} y hace tiempo que no mueves.\n"+
			"Si no mueves en las próximas {hours} horas, la partida se abandonará en tu nombre.\n\n{link}\n")
}
