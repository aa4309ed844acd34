// Package contributions stores recurring contribution plans.
package contributions

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cron specs per supported frequency; biweekly steps the weekly spec twice
var frequencySpecs = map[string]string{
	"weekly":    "@weekly",
	"biweekly":  "@weekly",
	"monthly":   "@monthly",
	"quarterly": "0 0 1 1,4,7,10 *",
	"annually":  "@yearly",
	"yearly":    "@yearly",
}

// ValidFrequency reports whether frequency is one NextDue understands
func ValidFrequency(frequency string) bool {
	_, ok := frequencySpecs[normalizeFrequency(frequency)]
	return ok
}

// NextDue returns the first due date after now for frequency, or nil when
// the frequency is not recognized
func NextDue(frequency string, now time.Time) *time.Time {
	freq := normalizeFrequency(frequency)
	spec, ok := frequencySpecs[freq]
	if !ok {
		return nil
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil
	}

	next := sched.Next(now)
	if freq == "biweekly" {
		next = sched.Next(next)
	}
	return &next
}

func normalizeFrequency(frequency string) string {
	return strings.ToLower(strings.TrimSpace(frequency))
}
