//go:build linux

package decoder

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var baudFlags = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// OpenSerial opens the decoder's tty in raw 8N1 mode at the given baud rate.
func OpenSerial(device string, baud int) (*os.File, error) {
	flag, ok := baudFlags[baud]
	if !ok {
		return nil, fmt.Errorf("unsupported baud rate %d", baud)
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	tio := unix.Termios{
		Cflag: flag | unix.CS8 | unix.CLOCAL | unix.CREAD,
		Iflag: unix.IGNPAR,
	}
	// Block until at least one byte is available; the pump owns its own
	// goroutine and tolerates indefinite silence.
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0
	tio.Ispeed = flag
	tio.Ospeed = flag

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &tio); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("configure serial port %s: %w", device, err)
	}
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("flush serial port %s: %w", device, err)
	}

	return os.NewFile(uintptr(fd), device), nil
}
