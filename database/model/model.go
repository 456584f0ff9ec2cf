// Package model defines the gorm models persisted by oplog.
package model

import (
	"github.com/oplog/oplog/logbook"
)

type User struct {
	Id               int          `json:"id" gorm:"primaryKey;autoIncrement"`
	Username         string       `json:"username" gorm:"uniqueIndex;not null"`
	Password         string       `json:"-"`
	Role             logbook.Role `json:"role" gorm:"not null;default:resident"`
	SecurityQuestion string       `json:"securityQuestion"`
	SecurityAnswer   string       `json:"-"`
	CreatedAt        int64        `json:"createdAt" gorm:"autoCreateTime"`
}

// Actor returns the user as the acting identity of an operation.
func (u *User) Actor() logbook.Actor {
	return logbook.Actor{Name: u.Username, Role: u.Role}
}

// Procedure is one logged procedure. Id is the stable identity used by the
// admin edit path; SeqId is the dense per-owner number residents see.
type Procedure struct {
	Id            int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner         string `json:"owner" gorm:"index:idx_procedures_owner_seq,priority:1"`
	SeqId         int    `json:"seqId" gorm:"index:idx_procedures_owner_seq,priority:2"`
	DateSort      string `json:"dateSort" gorm:"index"`
	logbook.Entry `gorm:"embedded"`
	CreatedAt     int64 `json:"createdAt" gorm:"autoCreateTime"`
}

// Record returns the procedure in the shape the projections consume.
func (p *Procedure) Record() logbook.Record {
	return logbook.Record{SeqID: p.SeqId, Owner: p.Owner, Entry: p.Entry}
}

// Records converts a slice of procedures for projection.
func Records(ps []Procedure) []logbook.Record {
	out := make([]logbook.Record, len(ps))
	for i := range ps {
		out[i] = ps[i].Record()
	}
	return out
}
