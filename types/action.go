package types

import "strings"

// ActionKind is the primary action applied to each selected entity
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDelete
	ActionRetire
	ActionWipe
	ActionRename
)

// ActionSpec describes how an action is named, confirmed and reported
type ActionSpec struct {
	Kind ActionKind
	// Code is the short choice code typed at the action prompt
	Code string
	Name string
	// Phrase must be typed verbatim to confirm
	Phrase string
	// Done and DryRun are the audit status labels for success and simulation
	Done   string
	DryRun string
}

// ActionSpecs is the closed table of action kinds
var ActionSpecs = map[ActionKind]ActionSpec{
	ActionDelete: {Kind: ActionDelete, Code: "D", Name: "Delete", Phrase: "DELETE", Done: "deleted", DryRun: "would-delete"},
	ActionRetire: {Kind: ActionRetire, Code: "R", Name: "Retire", Phrase: "RETIRE", Done: "retired", DryRun: "would-retire"},
	ActionWipe:   {Kind: ActionWipe, Code: "W", Name: "Wipe", Phrase: "WIPE", Done: "wiped", DryRun: "would-wipe"},
	ActionRename: {Kind: ActionRename, Code: "N", Name: "Rename", Phrase: "RENAME", Done: "renamed", DryRun: "would-rename"},
}

// DeviceActions are the actions offered in the devices flow, in prompt order
var DeviceActions = []ActionKind{ActionDelete, ActionRetire, ActionWipe}

// GroupActions are the actions offered in the groups flow, in prompt order
var GroupActions = []ActionKind{ActionDelete, ActionRename}

func (a ActionKind) Spec() ActionSpec {
	return ActionSpecs[a]
}

func (a ActionKind) String() string {
	if spec, ok := ActionSpecs[a]; ok {
		return spec.Name
	}
	return "None"
}

// ParseAction resolves an action name or its code, case-insensitively
func ParseAction(s string) (ActionKind, bool) {
	s = strings.TrimSpace(s)
	for kind, spec := range ActionSpecs {
		if strings.EqualFold(s, spec.Name) || strings.EqualFold(s, spec.Code) {
			return kind, true
		}
	}
	return ActionNone, false
}

// WipeOptions is the body of a wipe request
type WipeOptions struct {
	KeepEnrollmentData  bool   `json:"keepEnrollmentData"`
	KeepUserData        bool   `json:"keepUserData"`
	MacOSUnlockCode     string `json:"macOsUnlockCode,omitempty"`
	PersistEsimDataPlan bool   `json:"persistEsimDataPlan"`
	UseProtectedWipe    bool   `json:"useProtectedWipe"`
}

// PolicyWipeOptions is the only wipe body this tool sends. It is not
// operator configurable.
var PolicyWipeOptions = WipeOptions{
	KeepEnrollmentData:  false,
	KeepUserData:        false,
	MacOSUnlockCode:     "",
	PersistEsimDataPlan: false,
	UseProtectedWipe:    false,
}

// RenamePlan maps group id to its new display name
type RenamePlan map[string]string
