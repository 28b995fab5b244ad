package types

import (
	"strconv"
	"strings"
)

// Group is an Entra directory group
type Group struct {
	ID                    string   `json:"id"`
	DisplayName           string   `json:"displayName"`
	GroupTypes            []string `json:"groupTypes"`
	SecurityEnabled       bool     `json:"securityEnabled"`
	MailEnabled           bool     `json:"mailEnabled"`
	OnPremisesSyncEnabled *bool    `json:"onPremisesSyncEnabled"`

	// MemberCount is nil until a full member enumeration has been made
	MemberCount *int `json:"-"`
}

// GroupSelect is the $select list used when fetching groups
var GroupSelect = []string{
	"id",
	"displayName",
	"groupTypes",
	"securityEnabled",
	"mailEnabled",
	"onPremisesSyncEnabled",
}

// Synced is true for groups sourced from an on-premises directory
func (g *Group) Synced() bool {
	return g.OnPremisesSyncEnabled != nil && *g.OnPremisesSyncEnabled
}

func (g *Group) memberCountString() string {
	if g.MemberCount == nil {
		return ""
	}
	return strconv.Itoa(*g.MemberCount)
}

func (g *Group) EntityID() string   { return g.ID }
func (g *Group) EntityName() string { return g.DisplayName }

func (g *Group) Columns() []string {
	return []string{"Group", "Members", "Types", "Security", "Mail", "Synced"}
}

func (g *Group) Values() []string {
	return []string{
		g.DisplayName,
		g.memberCountString(),
		strings.Join(g.GroupTypes, ";"),
		strconv.FormatBool(g.SecurityEnabled),
		strconv.FormatBool(g.MailEnabled),
		strconv.FormatBool(g.Synced()),
	}
}

func (g *Group) AuditHeader() []string {
	return []string{
		"GroupId",
		"DisplayName",
		"MemberCount",
		"GroupTypes",
		"SecurityEnabled",
		"MailEnabled",
		"OnPremisesSyncEnabled",
	}
}

func (g *Group) AuditRecord() []string {
	return []string{
		g.ID,
		g.DisplayName,
		g.memberCountString(),
		strings.Join(g.GroupTypes, ";"),
		strconv.FormatBool(g.SecurityEnabled),
		strconv.FormatBool(g.MailEnabled),
		strconv.FormatBool(g.Synced()),
	}
}
