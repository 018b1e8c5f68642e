package event

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// EventHandler reacts to a committed event. It returns nil when the event is not of its concern.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

// invokeHandlers runs every handler in registration order. A panicking handler is reported as a failure
// and does not stop the others.
func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		r := invokeHandler(handler, record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		fields := logrus.Fields{"sourceType": record.SourceType, "sourceId": record.SourceId,
			"category": record.EventCategory, "handler": r.HandlerIdentifier}
		if r.Success {
			logrus.WithFields(fields).Info("event handled")
		} else {
			logrus.WithFields(fields).Error("event handling failed: ", r.Message)
		}
	}
	return results
}

func invokeHandler(handler EventHandler, record *EventRecord) (r *EventHandleResult) {
	defer func() {
		if ret := recover(); ret != nil {
			r = &EventHandleResult{Message: fmt.Sprintf("handler panic: %v", ret)}
		}
	}()
	return handler(record)
}
