//go:build linux

// Package canbridge carries a MAVLink byte stream over a raw SocketCAN
// interface by chunking frame bytes into 8-byte classic CAN data frames
// tagged with a fixed CAN id, the way some vehicles tunnel MAVLink over
// their existing CAN backbone instead of a dedicated UART. It is grounded
// on the teacher's internal/socketcan.Device (same AF_CAN/SOCK_RAW/bind
// sequence via golang.org/x/sys/unix), generalized from whole classic-CAN
// frame relaying to chunked MAVLink byte transport.
package canbridge

import (
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// ChunkID is the CAN arbitration id used for every chunk frame. A real
// deployment would make this configurable per MAVLink endpoint; a single
// constant is enough for this demo bridge.
const ChunkID = 0x123

// Device is a bound raw CAN socket.
type Device struct {
	fd int
}

// Open binds a raw CAN_RAW socket to iface.
func Open(iface string) (*Device, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("canbridge: socket(AF_CAN): %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 0); err != nil {
		if err != unix.ENOPROTOOPT {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("canbridge: disable CAN FD: %w", err)
		}
	}
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("canbridge: if %q: %w", iface, err)
	}
	sa := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("canbridge: bind(can@%s): %w", iface, err)
	}
	return &Device{fd: fd}, nil
}

// Close releases the socket.
func (d *Device) Close() error { return unix.Close(d.fd) }

// WriteChunk sends up to 8 bytes of data as one classic CAN frame tagged
// with ChunkID.
func (d *Device) WriteChunk(data []byte) error {
	if len(data) > 8 {
		return fmt.Errorf("canbridge: chunk too large: %d bytes", len(data))
	}
	var buf [unix.CAN_MTU]byte
	binary.LittleEndian.PutUint32(buf[0:4], ChunkID)
	buf[4] = byte(len(data))
	copy(buf[8:], data)
	_, err := unix.Write(d.fd, buf[:])
	return err
}

// ReadChunk reads one classic CAN frame and returns its data bytes if the
// id matches ChunkID (other ids on the bus are silently skipped).
func (d *Device) ReadChunk() ([]byte, error) {
	for {
		var buf [unix.CAN_MTU]byte
		n, err := unix.Read(d.fd, buf[:])
		if err != nil {
			return nil, err
		}
		if n != unix.CAN_MTU {
			return nil, fmt.Errorf("canbridge: short read: %d", n)
		}
		id := binary.LittleEndian.Uint32(buf[0:4])
		if id != ChunkID {
			continue
		}
		dlc := int(buf[4])
		if dlc > 8 {
			dlc = 8
		}
		return append([]byte(nil), buf[8:8+dlc]...), nil
	}
}
