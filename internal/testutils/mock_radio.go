package testutils

import (
	"sync"

	"github.com/srg/blescan/internal/device"
	"github.com/stretchr/testify/mock"
)

// MockRadio is a testify mock of device.RadioStack.
//
// Expectations are set the usual testify way; AllowAll registers permissive
// defaults for every method. Reports are injected with Deliver, which calls the
// handler installed by the code under test.
type MockRadio struct {
	mock.Mock

	mu      sync.Mutex
	handler device.ReportHandler
}

// NewMockRadio creates a MockRadio without expectations.
func NewMockRadio() *MockRadio {
	return &MockRadio{}
}

// AllowAll accepts every call and reports success.
func (m *MockRadio) AllowAll() *MockRadio {
	m.On("SetScanParameter", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("RequestScanStart").Return(nil).Maybe()
	m.On("RequestScanStop").Return(nil).Maybe()
	return m
}

func (m *MockRadio) SetScanParameter(param device.ScanParam, value uint16) error {
	args := m.Called(param, value)
	return args.Error(0)
}

func (m *MockRadio) RequestScanStart() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRadio) RequestScanStop() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRadio) SetReportHandler(handler device.ReportHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Deliver hands reports to the installed handler, one at a time, the way a
// radio's event goroutine would.
func (m *MockRadio) Deliver(reports ...device.Report) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()

	if h == nil {
		return
	}
	for _, r := range reports {
		h(r)
	}
}

// ParamValues returns the last value pushed for every scan parameter.
func (m *MockRadio) ParamValues() map[device.ScanParam]uint16 {
	values := make(map[device.ScanParam]uint16)
	for _, call := range m.Calls {
		if call.Method != "SetScanParameter" {
			continue
		}
		values[call.Arguments.Get(0).(device.ScanParam)] = call.Arguments.Get(1).(uint16)
	}
	return values
}
