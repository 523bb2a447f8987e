//go:build !linux && !darwin

package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/srg/blescan/internal/device"
)

func newDevice(_ cmd.LESetScanParameters) (ble.Device, error) {
	return nil, device.ErrUnsupported
}
