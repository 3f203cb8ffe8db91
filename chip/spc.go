package chip

// System Power Control register offsets.
const (
	SPC_SC         uintptr = 0x010
	SPC_SRAMCTL    uintptr = 0x040
	SPC_ACTIVE_CFG uintptr = 0x100
)

const (
	SPC_SC_BUSY = 1 << 0

	SPC_SRAMCTL_REQ = 1 << 30
	SPC_SRAMCTL_ACK = 1 << 31

	SPC_ACTIVE_CFG_CORELDO_VDD_DS = 1 << 0
)

var (
	SPC_SRAMCTL_VSM = Field{Pos: 0, Width: 2}

	SPC_ACTIVE_CFG_CORELDO_VDD_LVL = Field{Pos: 2, Width: 2}
	SPC_ACTIVE_CFG_DCDC_VDD_DS     = Field{Pos: 8, Width: 2}
	SPC_ACTIVE_CFG_DCDC_VDD_LVL    = Field{Pos: 10, Width: 2}
)

// Flash memory unit.
const (
	FMU_FCTRL uintptr = 0x008
)

var FMU_FCTRL_RWSC = Field{Pos: 0, Width: 4}
