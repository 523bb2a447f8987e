package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
	"github.com/go-ble/ble/linux/hci/cmd"
)

// newDevice opens the CoreBluetooth central manager. CoreBluetooth picks its
// own scan timing, so params are ignored.
func newDevice(_ cmd.LESetScanParameters) (ble.Device, error) {
	dev, err := darwin.NewDevice()
	if err != nil {
		return nil, err
	}
	return dev, nil
}
