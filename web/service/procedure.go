package service

import (
	"fmt"

	"github.com/oplog/oplog/database"
	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"

	"gorm.io/gorm"
)

// ProcedureService stores and lists procedure records. Every method that
// changes data runs in a single transaction, so a failed call leaves the
// store as it was.
type ProcedureService struct {
	DB *gorm.DB
}

func NewProcedureService(db *gorm.DB) *ProcedureService {
	return &ProcedureService{DB: db}
}

// Insert validates e and stores it for the acting user, returning the new
// sequence id.
func (s *ProcedureService) Insert(actor logbook.Actor, e logbook.Entry) (int, error) {
	if !actor.Role.CanLog() {
		return 0, logbook.ErrForbidden
	}
	if actor.Name == "" {
		return 0, logbook.ErrUnauthorized
	}
	entry, key, err := logbook.Prepare(e)
	if err != nil {
		return 0, err
	}

	var seq int
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		next, err := database.NextSeqID(tx, actor.Name)
		if err != nil {
			return err
		}
		p := &model.Procedure{
			Owner:    actor.Name,
			SeqId:    next,
			DateSort: key,
			Entry:    entry,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		seq = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Debugf("%s logged procedure #%d", actor.Name, seq)
	return seq, nil
}

// DeleteOwn removes the actor's record with the given sequence id and closes
// the gap it leaves.
func (s *ProcedureService) DeleteOwn(actor logbook.Actor, seqID int) error {
	if !actor.Role.CanLog() {
		return logbook.ErrForbidden
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("owner = ? AND seq_id = ?", actor.Name, seqID).Delete(&model.Procedure{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("procedure #%d of %s: %w", seqID, actor.Name, logbook.ErrNotFound)
		}
		return database.Resequence(tx, actor.Name)
	})
}

// DeleteByID removes any record by its global id. Master only.
func (s *ProcedureService) DeleteByID(actor logbook.Actor, id int) error {
	if actor.Role != logbook.RoleMaster {
		return logbook.ErrForbidden
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		p := &model.Procedure{}
		if err := tx.First(p, id).Error; err != nil {
			if database.IsNotFound(err) {
				return fmt.Errorf("procedure id %d: %w", id, logbook.ErrNotFound)
			}
			return err
		}
		if err := tx.Delete(p).Error; err != nil {
			return err
		}
		logger.Infof("%s deleted procedure id %d of %s", actor.Name, id, p.Owner)
		return database.Resequence(tx, p.Owner)
	})
}

// UpdateFields applies patch to the record with the given id. The merged
// record is normalized and validated again; owner and sequence id never
// change. Master only.
func (s *ProcedureService) UpdateFields(actor logbook.Actor, id int, patch logbook.Patch) (*model.Procedure, error) {
	if actor.Role != logbook.RoleMaster {
		return nil, logbook.ErrForbidden
	}
	p := &model.Procedure{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(p, id).Error; err != nil {
			if database.IsNotFound(err) {
				return fmt.Errorf("procedure id %d: %w", id, logbook.ErrNotFound)
			}
			return err
		}
		if patch.IsEmpty() {
			return nil
		}
		entry, key, err := logbook.Prepare(patch.Apply(p.Entry))
		if err != nil {
			return err
		}
		p.Entry = entry
		p.DateSort = key
		return tx.Model(p).Select(
			"date", "date_sort", "procedure_name", "role", "patient_id",
			"diagnosis", "category", "access", "closure_device", "notes",
		).Updates(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByOwner returns the owner's records in sequence order.
func (s *ProcedureService) ListByOwner(owner string, f logbook.Filter) ([]model.Procedure, error) {
	q, err := f.Resolve()
	if err != nil {
		return nil, err
	}
	q.Owner = owner
	var out []model.Procedure
	err = applyQuery(s.DB, q).Order("seq_id ASC").Find(&out).Error
	return out, err
}

// ListAll returns records across owners, newest first.
func (s *ProcedureService) ListAll(f logbook.Filter) ([]model.Procedure, error) {
	q, err := f.Resolve()
	if err != nil {
		return nil, err
	}
	var out []model.Procedure
	err = applyQuery(s.DB, q).Order("date_sort DESC, id DESC").Find(&out).Error
	return out, err
}

// List returns the records visible to actor.
func (s *ProcedureService) List(actor logbook.Actor, f logbook.Filter) ([]model.Procedure, error) {
	if actor.Role.SeesAll() {
		return s.ListAll(f)
	}
	if actor.Name == "" {
		return nil, logbook.ErrUnauthorized
	}
	return s.ListByOwner(actor.Name, f)
}

// applyQuery adds the WHERE clauses of q. An empty owner means all owners.
func applyQuery(db *gorm.DB, q logbook.Query) *gorm.DB {
	tx := db.Model(&model.Procedure{})
	if q.Owner != "" {
		tx = tx.Where("owner = ?", q.Owner)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	if q.DateKey != "" {
		tx = tx.Where("date_sort = ?", q.DateKey)
	}
	if q.FromKey != "" {
		tx = tx.Where("date_sort >= ?", q.FromKey)
	}
	if q.ToKey != "" {
		tx = tx.Where("date_sort <= ?", q.ToKey)
	}
	return tx
}
