// internal/game/characters.go
package game

import "strings"

// Character is one of the playable tavern patrons. Each character brings
// their own deck of player cards.
type Character string

const (
	CharacterFiona   Character = "fiona"
	CharacterZot     Character = "zot"
	CharacterDeirdre Character = "deirdre"
	CharacterGerki   Character = "gerki"
)

// ParseCharacter resolves a character from its case-insensitive name.
func ParseCharacter(s string) (Character, bool) {
	switch Character(strings.ToLower(s)) {
	case CharacterFiona:
		return CharacterFiona, true
	case CharacterZot:
		return CharacterZot, true
	case CharacterDeirdre:
		return CharacterDeirdre, true
	case CharacterGerki:
		return CharacterGerki, true
	}
	return "", false
}

// Orcish Rotgut and Troll Swill read these. No implemented character is an
// orc or a troll yet.
func (c Character) isOrc() bool   { return false }
func (c Character) isTroll() bool { return false }

// createDeck builds a fresh copy of the character's deck.
func (c Character) createDeck() []Card {
	switch c {
	case CharacterFiona:
		return []Card{
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			iRaiseCard(),
			iRaiseCard(),
			changeOtherPlayerFortitudeCard("So then I got the ogre in a headlock like this!", -3),
			changeOtherPlayerFortitudeCard("Hey! No more chain mail bikini jokes!", -2),
			changeOtherPlayerFortitudeCard("Hey! No more chain mail bikini jokes!", -2),
			changeOtherPlayerFortitudeCard("Who says I'm not a lady?", -2),
			changeOtherPlayerFortitudeCard("It'll hurt more if you do it like this!", -1),
			changeOtherPlayerFortitudeCard("It'll hurt more if you do it like this!", -1),
			changeOtherPlayerFortitudeCard("You wanna arm wrestle?", -1),
			ignoreRootCardAffectingFortitudeCard("Luckily for me, I was wearing my armor!"),
			ignoreRootCardAffectingFortitudeCard("Luckily for me, I was wearing my armor!"),
			gainFortitudeAnytimeCard("I'm a quick healer.", 2),
			wenchBringSomeDrinksForMyFriendsCard(),
			wenchBringSomeDrinksForMyFriendsCard(),
			ohIGuessTheWenchThoughtThatWasHerTipCard(),
			winningHandCard(),
			winningHandCard(),
			iDontThinkSoCard(),
		}
	case CharacterZot:
		return []Card{
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			iRaiseCard(),
			iRaiseCard(),
			changeOtherPlayerFortitudeCard("How many times have I told you? Keep your hands off my wand!", -2),
			changeOtherPlayerFortitudeCard("How many times have I told you? Keep your hands off my wand!", -2),
			changeOtherPlayerFortitudeCard("I told you not to distract me!", -2),
			changeOtherPlayerFortitudeCard("Watch out! Don't step on Pooky!", -2),
			changeOtherPlayerFortitudeCard("Down Pooky!", -1),
			changeAllOtherPlayerFortitudeCard("Oh no! Not again! Pooky's on a drunken rampage!", -1),
			changeAllOtherPlayerFortitudeCard("Oh no! Not again! Pooky's on a drunken rampage!", -1),
			ignoreRootCardAffectingFortitudeCard("Now you see me... Now you don't!"),
			wenchBringSomeDrinksForMyFriendsCard(),
			wenchBringSomeDrinksForMyFriendsCard(),
			ohIGuessTheWenchThoughtThatWasHerTipCard(),
			gamblingCheatCard("Pooky! Stop looking at everyone's cards!"),
			gamblingCheatCard("Look over there! It's the Lich King!"),
			gamblingCheatCard("This time, we'll use my dice."),
			winningHandCard(),
			winningHandCard(),
			iDontThinkSoCard(),
			ignoreDrinkCard("Bad Pooky! Don't drink that!"),
			combinedInterruptCard(
				"Not now, I'm meditating.",
				leaveGamblingRoundInsteadOfAnteingCard(""),
				ignoreDrinkCard(""),
			),
		}
	case CharacterDeirdre:
		return []Card{
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			iRaiseCard(),
			iRaiseCard(),
			changeOtherPlayerFortitudeCard("My Goddess made me do it!", -2),
			changeOtherPlayerFortitudeCard("My Goddess made me do it!", -2),
			changeOtherPlayerFortitudeCard("I'm not that kind of priestess!", -2),
			changeOtherPlayerFortitudeCard("Oh no! I think that growth on your arm might be Mummy Rot!", -2),
			changeOtherPlayerFortitudeCard("Sorry, sometimes my healing spells just wear off.", -1),
			ignoreRootCardAffectingFortitudeCard("My Goddess protects me!"),
			ignoreRootCardAffectingFortitudeCard("My Goddess protects me!"),
			gainFortitudeAnytimeCard("My Goddess heals me.", 2),
			gainFortitudeAnytimeCard("My Goddess heals me.", 2),
			wenchBringSomeDrinksForMyFriendsCard(),
			wenchBringSomeDrinksForMyFriendsCard(),
			ohIGuessTheWenchThoughtThatWasHerTipCard(),
			winningHandCard(),
			winningHandCard(),
			iDontThinkSoCard(),
		}
	case CharacterGerki:
		return []Card{
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			gamblingImInCard(),
			iRaiseCard(),
			iRaiseCard(),
			changeOtherPlayerFortitudeCard("Uh oh! I forgot to disarm one of the traps!", -3),
			changeOtherPlayerFortitudeCard("Have you seen my poison? I left it in a mug right here...", -3),
			changeOtherPlayerFortitudeCard("That's not healing salve! It's contact poison!", -2),
			changeOtherPlayerFortitudeCard("That's not healing salve! It's contact poison!", -2),
			changeOtherPlayerFortitudeCard("How did this get stuck in your back?", -2),
			changeOtherPlayerFortitudeCard("How did this get stuck in your back?", -2),
			ignoreRootCardAffectingFortitudeCard("Hide in shadows"),
			wenchBringSomeDrinksForMyFriendsCard(),
			wenchBringSomeDrinksForMyFriendsCard(),
			ohIGuessTheWenchThoughtThatWasHerTipCard(),
			gamblingCheatCard("I'm winning... Honestly!"),
			gamblingCheatCard("Oops... I dropped my cards..."),
			gamblingCheatCard("Five of a kind! Does this mean I win?"),
			winningHandCard(),
			winningHandCard(),
			iDontThinkSoCard(),
		}
	}
	return nil
}
