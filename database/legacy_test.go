package database

import (
	"path/filepath"
	"testing"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/util/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func writeLegacyDB(t *testing.T, path string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	stmts := []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT UNIQUE, password TEXT)`,
		`CREATE TABLE operationen (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			datum TEXT, eingriff TEXT, rolle TEXT, patient_id TEXT, diagnose TEXT,
			kategorie TEXT, zugang TEXT, verschlusssystem TEXT, username TEXT, user_id INTEGER
		)`,
		`INSERT INTO users (username, password) VALUES
			('alice', '` + crypto.LegacyHash("pw")[len(crypto.LegacyPrefix):] + `'),
			('bob', '')`,
		`INSERT INTO operationen (datum, eingriff, rolle, patient_id, diagnose, kategorie, zugang, verschlusssystem, username, user_id) VALUES
			('2.3.2024', 'EVAR', 'Operateur', 'P1', 'AAA', 'Intervention', 'Offen', 'AngioSeal', 'alice', 2),
			('01.03.2024', 'ZVK-Anlage', 'Assistent', 'P2', 'Sepsis', 'Prozedur', '', '', 'alice', 1),
			('kein Datum', 'TEVAR', 'Operateur', 'P3', 'TAA', 'Intervention', 'Punktion', 'ProGlide', 'alice', 3),
			('04.03.2024', 'TEVAR', 'Operateur', 'P4', 'TAA', 'Intervention', 'Punktion', 'ProGlide', '', NULL),
			('05.03.2024', 'Crossover Bypass', 'Operateur', 'P5', 'pAVK', 'Operation', '', '', 'carol', NULL)`,
	}
	for _, s := range stmts {
		require.NoError(t, db.Exec(s).Error)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestImportLegacy(t *testing.T) {
	legacy := filepath.Join(t.TempDir(), "logbuch.db")
	writeLegacyDB(t, legacy)

	db := newTestDB(t)
	addProcedure(t, db, "alice", 1, "01.01.2024")

	res, err := ImportLegacy(db, legacy)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Users)
	assert.Equal(t, 3, res.Procedures)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.SkipReasons, 2)

	var alice []model.Procedure
	require.NoError(t, db.Where("owner = ?", "alice").Order("seq_id").Find(&alice).Error)
	require.Len(t, alice, 3)

	// user_id 1 first, then user_id 2, after the record that already existed.
	assert.Equal(t, "ZVK-Anlage", alice[1].ProcedureName)
	assert.Equal(t, 2, alice[1].SeqId)
	assert.Equal(t, logbook.CategoryProcedure, alice[1].Category)
	assert.Equal(t, logbook.OpRoleAssistant, alice[1].Role)

	assert.Equal(t, "EVAR", alice[2].ProcedureName)
	assert.Equal(t, 3, alice[2].SeqId)
	assert.Equal(t, "02.03.2024", alice[2].Date)
	assert.Equal(t, "2024-03-02", alice[2].DateSort)
	assert.Equal(t, logbook.AccessOpen, alice[2].Access)
	assert.Equal(t, logbook.ClosureDevice(""), alice[2].ClosureDevice)

	var u model.User
	require.NoError(t, db.Where("username = ?", "alice").First(&u).Error)
	assert.True(t, crypto.IsLegacyHash(u.Password))
	assert.True(t, crypto.CheckPasswordHash(u.Password, "pw"))

	var carol model.User
	require.NoError(t, db.Where("username = ?", "carol").First(&carol).Error)
	assert.Equal(t, "", carol.Password)
	assert.Equal(t, logbook.RoleResident, carol.Role)
}

func TestImportLegacyMissingFile(t *testing.T) {
	db := newTestDB(t)
	_, err := ImportLegacy(db, filepath.Join("testdata", "missing.db"))
	assert.Error(t, err)
}
