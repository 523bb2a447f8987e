// Package device provides the Bluetooth Low Energy (BLE) scanning domain model
// shared by the radio adapters, the scan controller and the CLI.
//
// This package defines:
//   - Advertisement reports as delivered by a radio stack (Report)
//   - Peer addresses, address types and advertising event types
//   - The RadioStack collaborator consumed by the scan controller
//   - Sentinel errors raised by radio adapters
package device
