package serial

const (
	// ReferenceClock is the UART input clock in Hz.
	ReferenceClock = 16000000
	// BaudRate is the nominal baud rate of the link.
	BaudRate = 115200
	// DataBits is the number of data bits per character.
	DataBits = 8
)

// Divisor computes the UART divisor producing baud from clock, where the
// effective rate is clock/(divisor+1).
func Divisor(clock, baud int) int {
	return (clock+baud/2)/baud - 1
}

// ActualBaud computes the effective baud rate of a divisor.
func ActualBaud(clock, divisor int) int {
	return clock / (divisor + 1)
}
