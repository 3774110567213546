package cpu

// countdown delays an IME change across instruction boundaries:
// armed at 2, it moves to 1 on the next advance and fires on the one after.
type countdown uint8

func (c *countdown) arm()    { *c = 2 }
func (c *countdown) cancel() { *c = 0 }

// advance reports whether the pending change applies now.
func (c *countdown) advance() bool {
	switch *c {
	case 0:
		return false
	case 1:
		*c = 0
		return true
	}
	*c--
	return false
}

// AdvanceInterruptState moves pending EI/DI requests one step. The driver
// calls it once per iteration, before Step.
func (c *CPU) AdvanceInterruptState() {
	if c.enableIME.advance() {
		c.ime = true
	}
	if c.disableIME.advance() {
		c.ime = false
	}
}
