package project

import (
	"fmt"
	"time"

	"github.com/tarm/serial"

	"gofoc/common/logger"
)

const (
	FRAME_START_1 = 0xFF
	FRAME_START_2 = 0xAA
	FRAME_END     = 0xFE

	gatePayloadSize = 7 // seq(4) + u + v + w
)

const OPEN_SERIAL_DEV_ERROR = "Unable to open serial port"

func calcCRC(buf []byte) uint16 {
	var crc uint16 = 0xffff
	for i := 0; i < len(buf); i++ {
		data := uint16(buf[i])
		data ^= crc & 0xff
		data ^= (data & 0x0f) << 4
		crc = ((data << 8) | (crc >> 8)) ^ (data >> 4) ^ (data << 3)
	}
	return crc
}

// GateLink streams per-tick gate levels to an external inverter bridge
// over a serial port. Strictly a downstream sink: when the port is not
// connected frames are dropped, never blocking the tick path.
type GateLink struct {
	name string
	baud int

	port *serial.Port
	seq  uint32
}

func NewGateLink(name string, baud int) *GateLink {
	self := new(GateLink)
	self.name = name
	self.baud = baud
	return self
}

func (self *GateLink) Connect() error {
	cfg := &serial.Config{Name: self.name, Baud: self.baud, ReadTimeout: time.Millisecond}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		logger.Errorf("%s %s: %s", OPEN_SERIAL_DEV_ERROR, self.name, err)
		return fmt.Errorf("%s %s: %w", OPEN_SERIAL_DEV_ERROR, self.name, err)
	}
	self.port = port
	self.seq = 0
	return nil
}

func (self *GateLink) Disconnect() {
	if self.port != nil {
		self.port.Close()
		self.port = nil
	}
}

func (self *GateLink) IsConnected() bool {
	return self.port != nil
}

// SendLevels frames the three half-bridge levels and writes them out.
// Levels are reduced to on/off; the receiving bridge knows the bus
// voltage.
func (self *GateLink) SendLevels(u, v, w bool) error {
	if self.port == nil {
		return nil
	}

	frame := encodeGateFrame(self.seq, levelByte(u), levelByte(v), levelByte(w))
	self.seq++

	if _, err := self.port.Write(frame); err != nil {
		return fmt.Errorf("gate link write: %w", err)
	}
	return nil
}

func levelByte(on bool) byte {
	if on {
		return 1
	}
	return 0
}

func encodeGateFrame(seq uint32, u, v, w byte) []byte {
	payload := []byte{
		byte(seq), byte(seq >> 8), byte(seq >> 16), byte(seq >> 24),
		u, v, w,
	}

	var buf []byte
	buf = append(buf, FRAME_START_1)
	buf = append(buf, FRAME_START_2)
	buf = append(buf, byte(len(payload)))
	buf = append(buf, byte(len(payload)>>8))
	buf = append(buf, payload...)

	crc := calcCRC(payload)
	buf = append(buf, byte(crc))
	buf = append(buf, byte(crc>>8))
	buf = append(buf, FRAME_END)
	return buf
}
