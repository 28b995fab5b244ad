package director

import (
	log "github.com/sirupsen/logrus"
)

type LogHolder struct {
	RunID           string
	EntityID        string
	EntityName      string
	Action          string
	PrimaryStatus   string
	SecondaryStatus string
	Message         string
}

func processFields(logholder LogHolder) *log.Entry {
	fields := log.Fields{}
	add := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	add("run_id", logholder.RunID)
	add("entity_id", logholder.EntityID)
	add("entity_name", logholder.EntityName)
	add("action", logholder.Action)
	add("primary_status", logholder.PrimaryStatus)
	add("secondary_status", logholder.SecondaryStatus)
	return log.WithFields(fields)
}

func DebugLogger(logholder LogHolder) {
	processFields(logholder).Debug(logholder.Message)
}

func InfoLogger(logholder LogHolder) {
	processFields(logholder).Info(logholder.Message)
}

func WarnLogger(logholder LogHolder) {
	processFields(logholder).Warn(logholder.Message)
}

func ErrorLogger(logholder LogHolder) {
	processFields(logholder).Error(logholder.Message)
}
