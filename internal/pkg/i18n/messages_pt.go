package i18n

import "golang.org/x/text/language"

func init() {
	register(language.Portuguese,
		"Sua vez na partida {game}",
		"Olá {name},\n\né a sua vez na partida {game} e nenhum lance foi feito há algum tempo.\n"+
			"Se você não jogar nas próximas {hours} horas, a partida será abandonada em seu nome.\n\n{link}\n")
}
