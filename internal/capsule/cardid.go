package capsule

// CardID derives a card's progress identifier from its text pair. Identity
// survives edits that leave the text unchanged; two cards with identical
// front and back text collide.
func CardID(front, back string) string {
	return front + "-" + back
}

// ID returns the card's progress identifier.
func (c Card) ID() string {
	return CardID(c.Front, c.Back)
}
