package types

import "time"

// ActionRecord is the database row of an ActionResult
type ActionRecord struct {
	ID              string `gorm:"primaryKey"`
	RunID           string `gorm:"index"`
	Timestamp       time.Time
	TenantID        string
	Action          string
	EntityType      string
	EntityID        string `gorm:"index"`
	EntityName      string
	Status          string
	Error           string
	SecondaryStatus string
	SecondaryError  string
	NewName         string
	DryRun          bool
}

// EntityType names the kind of entity a result was recorded for
func EntityType(e Entity) string {
	switch e.(type) {
	case *ManagedDevice:
		return "device"
	case *Group:
		return "group"
	}
	return ""
}
