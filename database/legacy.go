package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/util/crypto"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ImportResult summarizes an ImportLegacy run.
type ImportResult struct {
	Users        int      `json:"users"`
	Procedures   int      `json:"procedures"`
	Skipped      int      `json:"skipped"`
	SkipReasons  []string `json:"skipReasons"`
	ExistingUser int      `json:"existingUsers"`
}

// legacyColumns maps the German columns of the old desktop logbook table
// "operationen". Older files may lack any column but the first four.
var legacyColumns = []string{
	"datum", "eingriff", "rolle", "patient_id",
	"datum_sort", "diagnose", "kategorie", "zugang",
	"verschlusssystem", "notizen", "username", "user_id",
}

type legacyOperation struct {
	Id               int
	Datum            sql.NullString
	DatumSort        sql.NullString
	Eingriff         sql.NullString
	Rolle            sql.NullString
	PatientId        sql.NullString
	Diagnose         sql.NullString
	Kategorie        sql.NullString
	Zugang           sql.NullString
	Verschlusssystem sql.NullString
	Notizen          sql.NullString
	Username         sql.NullString
	UserId           sql.NullInt64
}

type legacyUser struct {
	Username sql.NullString
	Password sql.NullString
}

// ImportLegacy copies users and procedures from a database written by the
// old desktop logbook into db. German enum labels are mapped, sha256
// passwords are kept for a one-time upgrade at login and each owner's
// legacy numbering is continued after their existing records. Rows
// without an owner or with an unparseable date are skipped. The legacy file
// is opened read-only and never modified.
func ImportLegacy(db *gorm.DB, legacyPath string) (*ImportResult, error) {
	f, err := os.Open(legacyPath)
	if err != nil {
		return nil, err
	}
	ok, err := IsSQLiteDB(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s is not a SQLite database", legacyPath)
	}

	src, err := gorm.Open(sqlite.Open("file:"+legacyPath+"?mode=ro"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, err
	}
	if srcDB, err := src.DB(); err == nil {
		defer srcDB.Close()
	}

	if !src.Migrator().HasTable("operationen") {
		return nil, errors.New("legacy database has no operationen table")
	}

	selects := make([]string, 0, len(legacyColumns)+1)
	selects = append(selects, "id")
	for _, col := range legacyColumns {
		if src.Migrator().HasColumn("operationen", col) {
			selects = append(selects, col)
		} else {
			selects = append(selects, "NULL AS "+col)
		}
	}
	var ops []legacyOperation
	if err := src.Table("operationen").Select(strings.Join(selects, ", ")).Order("id").Scan(&ops).Error; err != nil {
		return nil, err
	}

	var users []legacyUser
	if src.Migrator().HasTable("users") {
		if err := src.Table("users").Select("username, password").Scan(&users).Error; err != nil {
			return nil, err
		}
	}

	result := &ImportResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			name := strings.TrimSpace(u.Username.String)
			if name == "" {
				continue
			}
			created, err := importUser(tx, name, u.Password.String)
			if err != nil {
				return err
			}
			if created {
				result.Users++
			} else {
				result.ExistingUser++
			}
		}
		return importOperations(tx, ops, result)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("legacy import from %s: %d users, %d procedures, %d skipped",
		legacyPath, result.Users, result.Procedures, result.Skipped)
	return result, nil
}

func importUser(tx *gorm.DB, name, digest string) (bool, error) {
	var count int64
	if err := tx.Model(&model.User{}).Where("username = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	password := ""
	if digest != "" {
		password = crypto.LegacyPrefix + strings.ToLower(digest)
	}
	return true, tx.Create(&model.User{
		Username: name,
		Password: password,
		Role:     logbook.RoleResident,
	}).Error
}

func importOperations(tx *gorm.DB, ops []legacyOperation, result *ImportResult) error {
	// The old file numbered rows per user in user_id; rows from before that
	// column existed are numbered by id, as the old program did.
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.Username.String != b.Username.String {
			return a.Username.String < b.Username.String
		}
		if a.UserId.Valid != b.UserId.Valid {
			return a.UserId.Valid
		}
		if a.UserId.Int64 != b.UserId.Int64 {
			return a.UserId.Int64 < b.UserId.Int64
		}
		return a.Id < b.Id
	})

	next := map[string]int{}
	for _, op := range ops {
		owner := strings.TrimSpace(op.Username.String)
		if owner == "" {
			result.skip(op.Id, "no owner")
			continue
		}
		entry := logbook.Entry{
			Date:          op.Datum.String,
			ProcedureName: op.Eingriff.String,
			Role:          logbook.OpRole(op.Rolle.String),
			PatientID:     op.PatientId.String,
			Diagnosis:     op.Diagnose.String,
			Category:      logbook.Category(op.Kategorie.String),
			Access:        logbook.Access(op.Zugang.String),
			ClosureDevice: logbook.ClosureDevice(op.Verschlusssystem.String),
			Notes:         op.Notizen.String,
		}.Normalize()
		key, err := logbook.ToSortKey(entry.Date)
		if err != nil {
			result.skip(op.Id, err.Error())
			continue
		}

		seq, ok := next[owner]
		if !ok {
			if seq, err = NextSeqID(tx, owner); err != nil {
				return err
			}
		}
		p := &model.Procedure{
			Owner:    owner,
			SeqId:    seq,
			DateSort: key,
			Entry:    entry,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		next[owner] = seq + 1
		result.Procedures++

		if err := ensureUser(tx, owner, result); err != nil {
			return err
		}
	}
	return nil
}

// ensureUser creates a password-less account for owners that only appear
// in operationen; they must reset their password before logging in.
func ensureUser(tx *gorm.DB, owner string, result *ImportResult) error {
	created, err := importUser(tx, owner, "")
	if err != nil {
		return err
	}
	if created {
		result.Users++
	}
	return nil
}

func (r *ImportResult) skip(id int, reason string) {
	r.Skipped++
	r.SkipReasons = append(r.SkipReasons, fmt.Sprintf("operationen.id=%d: %s", id, reason))
}
