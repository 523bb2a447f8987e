package scanner

import (
	"fmt"
	"strings"
	"time"

	blelib "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/adstruct"
	"github.com/srg/blescan/internal/device"
)

// ReportEventType marks if the peer was newly discovered or updated
type ReportEventType int

const (
	EventNew ReportEventType = iota
	EventUpdated
)

func (t ReportEventType) String() string {
	if t == EventNew {
		return "new"
	}
	return "updated"
}

// ReportEvent is one advertisement report together with its decoded fields.
type ReportEvent struct {
	Type      ReportEventType
	Report    device.Report
	Fields    []adstruct.Field
	Timestamp time.Time
}

// ReportFilter selects which reports are published. Empty lists match everything.
type ReportFilter struct {
	AllowList    []string      // peer addresses (or identifiers) to keep
	BlockList    []string      // peer addresses (or identifiers) to drop
	ServiceUUIDs []blelib.UUID // keep peers advertising at least one of these services
}

// Match reports whether a report with the given decoded fields passes the filter.
func (f *ReportFilter) Match(r device.Report, fields []adstruct.Field) bool {
	if f == nil {
		return true
	}
	key := r.Key()

	for _, blocked := range f.BlockList {
		if strings.EqualFold(key, blocked) {
			return false
		}
	}

	if len(f.AllowList) > 0 {
		allowed := false
		for _, a := range f.AllowList {
			if strings.EqualFold(key, a) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if len(f.ServiceUUIDs) > 0 {
		for _, field := range fields {
			if field.Kind != adstruct.KindUUID && field.Kind != adstruct.KindServiceData {
				continue
			}
			if blelib.Contains(f.ServiceUUIDs, field.UUID) {
				return true
			}
		}
		return false
	}

	return true
}

// handleReport decodes a report delivered by the radio and publishes it.
// Runs on the radio's delivery goroutine.
func (c *Controller) handleReport(r device.Report) {
	if !c.active.Load() {
		return
	}

	fields := adstruct.DecodeAll(r.Payload())
	if !c.filter.Load().Match(r, fields) {
		return
	}

	now := time.Now()
	event := ReportEvent{
		Type:      EventUpdated,
		Report:    r,
		Fields:    fields,
		Timestamp: now,
	}
	if _, seen := c.peers.Load().GetOrInsert(r.Key(), now); !seen {
		event.Type = EventNew
		c.logger.WithFields(logrus.Fields{
			"address": r.Key(),
			"rssi":    r.RSSI,
		}).Debug("Discovered new device")
	}

	if c.logReports {
		LogReport(c.logger, r, fields)
	}

	c.events.Push(event)
}

// LogReport writes one Info entry describing the report followed by one entry
// per decoded field. With Debug enabled the raw AD structures are logged too.
func LogReport(logger *logrus.Logger, r device.Report, fields []adstruct.Field) {
	entry := logger.WithFields(logrus.Fields{
		"adv_type":  r.EventType.String(),
		"addr_type": r.AddressType.String(),
		"address":   r.Key(),
		"rssi":      r.RSSI,
	})
	entry.Info("Advertisement report")

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for s := range adstruct.Structures(r.Payload()) {
			entry.Debugf("AD Structure Info: AD type 0x%X, AD Data Length %d", uint8(s.Type), len(s.Data))
		}
	}

	for _, f := range fields {
		entry.WithField("ad_type", fmt.Sprintf("0x%02X", uint8(f.Type))).Info(f.String())
	}
}
