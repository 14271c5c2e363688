package i18n

import "golang.org/x/text/language"

func init() {
	register(language.English,
		"Your move in game {game}",
		"Hi {name},\n\nIt is your turn in game {game} and no move has been made for a while.\n"+
			"If you do not move within {hours} hours, the game will be resigned on your behalf.\n\n{link}\n")
}
