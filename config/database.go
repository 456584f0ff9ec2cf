package config

import (
	"fmt"
	"os"
	"path/filepath"
)

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("OPLOG_DB_FOLDER")
	if dbFolderPath == "" {
		if IsDebug() {
			return "db"
		}
		dbFolderPath = "/etc/oplog"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

// GetBackupFolder returns where scheduled backups are written. Defaults to a
// "backup" directory next to the database.
func GetBackupFolder() string {
	if v := os.Getenv("OPLOG_BACKUP_FOLDER"); v != "" {
		return v
	}
	return filepath.Join(GetDBFolderPath(), "backup")
}

// GetBackupCron returns the cron spec of the backup job. "-" disables it.
func GetBackupCron() string {
	v := os.Getenv("OPLOG_BACKUP_CRON")
	switch v {
	case "":
		return "@daily"
	case "-":
		return ""
	}
	return v
}

// GetBackupKeep returns how many backup files are retained.
func GetBackupKeep() int {
	return getInt("OPLOG_BACKUP_KEEP", 7)
}
