package goble

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"
)

// newDevice opens the first HCI adapter. The scan parameters are handed to
// the HCI layer, which sends them with every LE Set Scan Parameters command.
func newDevice(params cmd.LESetScanParameters) (ble.Device, error) {
	dev, err := linux.NewDevice(ble.OptScanParams(params))
	if err != nil {
		return nil, err
	}
	return dev, nil
}
