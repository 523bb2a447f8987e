// Package devicefactory creates the radio stack used by the CLI.
package devicefactory

import (
	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/device"
	goble "github.com/srg/blescan/internal/device/go-ble"
)

// RadioFactory creates device.RadioStack instances for scanning.
// This is a variable so that it can be overridden in tests.
var RadioFactory = func(logger *logrus.Logger) (device.RadioStack, error) {
	return goble.NewStack(logger), nil
}
