package job

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oplog/oplog/database"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/util/common"

	natomic "github.com/natefinch/atomic"
	"go.uber.org/atomic"
	"gorm.io/gorm"
)

const backupTimeLayout = "20060102-150405"

// BackupJob copies the database file into a backup folder and keeps the
// newest Keep copies.
type BackupJob struct {
	db     *gorm.DB
	dbPath string
	folder string
	keep   int

	running atomic.Bool
	now     func() time.Time
}

func NewBackupJob(db *gorm.DB, dbPath, folder string, keep int) *BackupJob {
	return &BackupJob{db: db, dbPath: dbPath, folder: folder, keep: keep, now: time.Now}
}

// Run takes one scheduled backup. A run that starts while the previous one
// is still copying is skipped.
func (j *BackupJob) Run() {
	defer common.Recover("backup job")
	if !j.running.CompareAndSwap(false, true) {
		logger.Warning("backup job is still running, skipping")
		return
	}
	defer j.running.Store(false)

	path, err := j.Backup()
	if err != nil {
		logger.Error("backup job err:", err)
		return
	}
	logger.Infof("database backed up to %s", path)
}

// Backup writes one backup now and returns its path.
func (j *BackupJob) Backup() (string, error) {
	if err := database.Checkpoint(j.db); err != nil {
		return "", err
	}
	if err := os.MkdirAll(j.folder, 0o750); err != nil {
		return "", err
	}

	src, err := os.Open(j.dbPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	base := strings.TrimSuffix(filepath.Base(j.dbPath), filepath.Ext(j.dbPath))
	name := fmt.Sprintf("%s-%s.db", base, j.now().Format(backupTimeLayout))
	path := filepath.Join(j.folder, name)
	if err := natomic.WriteFile(path, src); err != nil {
		return "", err
	}
	return path, j.prune(base)
}

// prune removes all but the newest keep backups. The timestamp in the name
// sorts chronologically.
func (j *BackupJob) prune(base string) error {
	if j.keep <= 0 {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(j.folder, base+"-*.db"))
	if err != nil {
		return err
	}
	if len(matches) <= j.keep {
		return nil
	}
	sort.Strings(matches)
	var errs []error
	for _, old := range matches[:len(matches)-j.keep] {
		if err := os.Remove(old); err != nil {
			errs = append(errs, err)
		}
	}
	return common.Combine(errs...)
}
