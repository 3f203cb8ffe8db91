package chip

// Bits of every clock divider register (AHBCLKDIV, CLKOUTDIV and the
// peripheral CLKDIV registers).
const (
	CLKDIV_RESET  = 1 << 29
	CLKDIV_HALT   = 1 << 30
	CLKDIV_UNSTAB = 1 << 31
)

var (
	CLKDIV_DIV = Field{Pos: 0, Width: 8}
	CLKSEL_SEL = Field{Pos: 0, Width: 4}
)
