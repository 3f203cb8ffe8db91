package chip

// System Clock Generator register offsets.
const (
	SCG_CSR      uintptr = 0x010
	SCG_RCCR     uintptr = 0x014
	SCG_SOSCCSR  uintptr = 0x100
	SCG_SOSCCFG  uintptr = 0x108
	SCG_SIRCCSR  uintptr = 0x200
	SCG_FIRCCSR  uintptr = 0x300
	SCG_FIRCCFG  uintptr = 0x308
	SCG_ROSCCSR  uintptr = 0x400
	SCG_APLLBASE uintptr = 0x500
	SCG_SPLLBASE uintptr = 0x600
	SCG_UPLLCSR  uintptr = 0x700
	SCG_LDOCSR   uintptr = 0x800
)

// Offsets inside a PLL register bank (APLL at SCG_APLLBASE, SPLL at
// SCG_SPLLBASE).
const (
	SCG_PLLCSR       uintptr = 0x00
	SCG_PLLCTRL      uintptr = 0x04
	SCG_PLLSTAT      uintptr = 0x08
	SCG_PLLNDIV      uintptr = 0x0C
	SCG_PLLMDIV      uintptr = 0x10
	SCG_PLLPDIV      uintptr = 0x14
	SCG_PLLLOCK_CNFG uintptr = 0x18
	SCG_PLLSSCGSTAT  uintptr = 0x1C
	SCG_PLLSSCG0     uintptr = 0x20
	SCG_PLLSSCG1     uintptr = 0x24
)

var (
	// Read-only echo of the active main clock source.
	SCG_CSR_SCS = Field{Pos: 24, Width: 4}
	// Requested main clock source.
	SCG_RCCR_SCS = Field{Pos: 24, Width: 4}
)

// Bits shared by the oscillator control/status registers.
const (
	SCG_OSCCSR_LK  = 1 << 23
	SCG_OSCCSR_VLD = 1 << 24
	SCG_OSCCSR_SEL = 1 << 25
	SCG_OSCCSR_ERR = 1 << 26
)

const (
	SCG_SOSCCSR_SOSCEN   = 1 << 0
	SCG_SOSCCSR_SOSCSTEN = 1 << 1
	SCG_SOSCCSR_SOSCCM   = 1 << 16
	SCG_SOSCCSR_SOSCCMRE = 1 << 17

	SCG_SOSCCFG_EREFS = 1 << 2
)

var SCG_SOSCCFG_RANGE = Field{Pos: 4, Width: 2}

const (
	SCG_SIRCCSR_SIRCSTEN           = 1 << 1
	SCG_SIRCCSR_SIRC_CLK_PERIPH_EN = 1 << 5
)

const (
	SCG_FIRCCSR_FIRCEN              = 1 << 0
	SCG_FIRCCSR_FIRCSTEN            = 1 << 1
	SCG_FIRCCSR_FIRC_SCLK_PERIPH_EN = 1 << 4
	SCG_FIRCCSR_FIRC_FCLK_PERIPH_EN = 1 << 5
)

const (
	SCG_PLLCSR_PWREN     = 1 << 0
	SCG_PLLCSR_CLKEN     = 1 << 1
	SCG_PLLCSR_STEN      = 1 << 2
	SCG_PLLCSR_CM        = 1 << 16
	SCG_PLLCSR_LK        = 1 << 23
	SCG_PLLCSR_LOCK      = 1 << 24
	SCG_PLLCSR_SEL       = 1 << 25
	SCG_PLLCSR_ERR       = 1 << 26
	SCG_PLLCSR_LOCK_FAIL = 1 << 27

	SCG_PLLCTRL_BYPASSPOSTDIV  = 1 << 16
	SCG_PLLCTRL_BYPASSPREDIV   = 1 << 19
	SCG_PLLCTRL_BYPASSPOSTDIV2 = 1 << 20

	SCG_PLLNDIV_NREQ = 1 << 31
	SCG_PLLMDIV_MREQ = 1 << 31
	SCG_PLLPDIV_PREQ = 1 << 31
)

var (
	SCG_PLLCTRL_SELR   = Field{Pos: 0, Width: 4}
	SCG_PLLCTRL_SELI   = Field{Pos: 4, Width: 6}
	SCG_PLLCTRL_SELP   = Field{Pos: 10, Width: 5}
	SCG_PLLCTRL_SOURCE = Field{Pos: 25, Width: 2}

	SCG_PLLNDIV_NDIV = Field{Pos: 0, Width: 8}
	SCG_PLLMDIV_MDIV = Field{Pos: 0, Width: 16}
	SCG_PLLPDIV_PDIV = Field{Pos: 0, Width: 5}

	SCG_PLLLOCK_CNFG_LOCK_TIME = Field{Pos: 0, Width: 17}
)

const (
	SCG_LDOCSR_LDOEN   = 1 << 0
	SCG_LDOCSR_VOUT_OK = 1 << 31
)
