package director

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestInfoLogger(t *testing.T) {

	hook := test.NewGlobal()
	InfoLogger(LogHolder{
		RunID:           "a_run_id",
		EntityID:        "a_entity_id",
		EntityName:      "a_entity_name",
		Action:          "Retire",
		PrimaryStatus:   "retired",
		SecondaryStatus: "deleted",
		Message:         "this is a message",
	})

	assert.Equal(t, 1, len(hook.Entries))
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "this is a message", hook.LastEntry().Message)
	assert.Equal(t, logrus.Fields{
		"run_id":           "a_run_id",
		"entity_id":        "a_entity_id",
		"entity_name":      "a_entity_name",
		"action":           "Retire",
		"primary_status":   "retired",
		"secondary_status": "deleted",
	}, hook.LastEntry().Data)
}

func TestWarnLogger_OmitsEmptyFields(t *testing.T) {
	hook := test.NewGlobal()
	WarnLogger(LogHolder{EntityID: "d1", Message: "failed"})

	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, logrus.Fields{"entity_id": "d1"}, hook.LastEntry().Data)
}
