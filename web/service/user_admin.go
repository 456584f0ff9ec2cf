package service

import (
	"fmt"
	"strings"

	"github.com/oplog/oplog/database"
	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/util/crypto"

	"gorm.io/gorm"
)

type UserAdminService struct {
	DB *gorm.DB
}

func NewUserAdminService(db *gorm.DB) *UserAdminService {
	return &UserAdminService{DB: db}
}

type UserDTO struct {
	Id         int          `json:"id"`
	Username   string       `json:"username"`
	Role       logbook.Role `json:"role"`
	Procedures int64        `json:"procedures"`
}

func toDTO(u *model.User) UserDTO {
	return UserDTO{Id: u.Id, Username: u.Username, Role: u.Role}
}

func (s *UserAdminService) ListUsers() ([]UserDTO, error) {
	var users []model.User
	if err := s.DB.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	var counts []struct {
		Owner string
		Count int64
	}
	err := s.DB.Model(&model.Procedure{}).
		Select("owner, COUNT(*) AS count").
		Group("owner").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	perOwner := make(map[string]int64, len(counts))
	for _, c := range counts {
		perOwner[c.Owner] = c.Count
	}

	out := make([]UserDTO, 0, len(users))
	for i := range users {
		dto := toDTO(&users[i])
		dto.Procedures = perOwner[dto.Username]
		out = append(out, dto)
	}
	return out, nil
}

func (s *UserAdminService) CreateUser(username, rawPassword string, role logbook.Role) (UserDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return UserDTO{}, &logbook.ValidationError{Field: "username", Reason: "required"}
	}
	if rawPassword == "" {
		return UserDTO{}, &logbook.ValidationError{Field: "password", Reason: "required"}
	}
	if role == "" {
		role = logbook.RoleResident
	}
	if role == logbook.RoleTutor {
		return UserDTO{}, &logbook.ValidationError{Field: "role", Reason: "tutors log in with the shared passphrase"}
	}
	hash, err := crypto.HashPasswordAsBcrypt(rawPassword)
	if err != nil {
		return UserDTO{}, err
	}
	u := &model.User{
		Username: username,
		Password: hash,
		Role:     role,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("user %q: %w", username, logbook.ErrConflict)
		}
		return tx.Create(u).Error
	})
	if err != nil {
		return UserDTO{}, err
	}
	return toDTO(u), nil
}

// DeleteUser removes a user and all of their procedures. Masters cannot be
// deleted.
func (s *UserAdminService) DeleteUser(actor logbook.Actor, id int) error {
	if actor.Role != logbook.RoleMaster {
		return logbook.ErrForbidden
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.First(&u, id).Error; err != nil {
			if database.IsNotFound(err) {
				return fmt.Errorf("user id %d: %w", id, logbook.ErrNotFound)
			}
			return err
		}
		if u.Role == logbook.RoleMaster {
			return logbook.ErrForbidden
		}
		res := tx.Where("owner = ?", u.Username).Delete(&model.Procedure{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&u).Error; err != nil {
			return err
		}
		logger.Infof("%s deleted user %s and %d procedures", actor.Name, u.Username, res.RowsAffected)
		return nil
	})
}

// DeleteUserByName resolves username and deletes it like DeleteUser.
func (s *UserAdminService) DeleteUserByName(actor logbook.Actor, username string) error {
	var u model.User
	err := s.DB.Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if database.IsNotFound(err) {
		return fmt.Errorf("user %q: %w", username, logbook.ErrNotFound)
	} else if err != nil {
		return err
	}
	return s.DeleteUser(actor, u.Id)
}
