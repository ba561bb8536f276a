// Package io provides the I/O collaborators of the LS-8 emulator: the Tape
// that receives PRN output, and the Rom that holds a program image read from
// its text encoding.
package io

// Channel defines the interface for output channels of the LS-8.
type Channel interface {
	// Send writes a single byte to the channel.
	Send(value uint8) error
}
