package gcode

import "errors"

// Block is a single command line sent to the controller.
type Block []Word

func (b Block) Arg(w byte) (bool, float64) {
	for _, g := range b {
		if g.W == w {
			return true, g.Arg
		}
	}
	return false, 0
}

// Validate checks that no word is repeated (other than G) and that
// no two words share a modal group.
func (b Block) Validate() error {
	if len(b) == 0 {
		return errors.New("empty block")
	}
	var checkWord [256]bool
	var checkModal [256]bool

	for _, g := range b {
		if !g.IsValid() {
			return errors.New("invalid word in block: " + g.String())
		}
		if g.W != 'G' && checkWord[g.W] {
			return errors.New("word was repeated in a block: " + g.String())
		}
		checkWord[g.W] = true

		m := g.ModalGroup()
		if m == ModalGroupNone || m == ModalGroupNonModal {
			continue
		}
		if checkModal[m] {
			return errors.New("multiple words from same modal group: " + g.String())
		}
		checkModal[m] = true
	}

	return nil
}

// String renders the block in compact form, e.g. `G38.2Z-0.5F50`.
func (b Block) String() string {
	var buf []byte
	for _, g := range b {
		buf = appendWord(buf, g)
	}
	return string(buf)
}
