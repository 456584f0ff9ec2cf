// Package database opens the oplog SQLite store, evolves its schema and
// keeps per-owner sequence numbers dense.
package database

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/oplog/oplog/config"
	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/util/crypto"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func initModels(db *gorm.DB) error {
	models := []any{
		&model.User{},
		&model.Procedure{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initMaster creates the bootstrap master account if no master exists.
func initMaster(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", logbook.RoleMaster).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	user := &model.User{}
	err = db.Where("username = ?", username).First(user).Error
	if IsNotFound(err) {
		logger.Infof("creating master account %q", username)
		return db.Create(&model.User{
			Username: username,
			Password: hash,
			Role:     logbook.RoleMaster,
		}).Error
	} else if err != nil {
		return err
	}
	logger.Warningf("promoting existing user %q to master", username)
	return db.Model(user).Update("role", logbook.RoleMaster).Error
}

// InitDB opens (creating if needed) the database at dbPath, migrates the
// schema, backfills rows written by older versions and bootstraps the
// master account. It is safe to call on an up-to-date store.
func InitDB(dbPath string) (*gorm.DB, error) {
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return nil, err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=10000"
	db, err := gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA cache_size = -64000;",
		"PRAGMA temp_store = MEMORY;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	if err := initModels(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := backfill(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := initMaster(db, config.GetMasterUsername(), config.GetMasterPassword()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// CloseDB checkpoints the WAL and closes the connection pool.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := Checkpoint(db); err != nil {
		logger.Warningf("error executing checkpoint: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsSQLiteDB checks the SQLite file signature.
func IsSQLiteDB(file io.ReaderAt) (bool, error) {
	signature := []byte("SQLite format 3\x00")
	buf := make([]byte, len(signature))
	_, err := file.ReadAt(buf, 0)
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, signature), nil
}

// Checkpoint flushes the WAL into the main database file.
func Checkpoint(db *gorm.DB) error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
