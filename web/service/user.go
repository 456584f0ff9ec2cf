package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oplog/oplog/database"
	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/util/crypto"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"
)

// UserService implements the login policy of oplog: bcrypt passwords,
// one-time upgrade of imported sha256 hashes, an optional TOTP code for
// masters and a shared passphrase for tutor mode.
type UserService struct {
	DB *gorm.DB

	// TutorPassphrase enables tutor mode when non-empty.
	TutorPassphrase string
	// MasterTOTP is the base32 secret masters must answer, "" when off.
	MasterTOTP string
}

var _ logbook.Authenticator = (*UserService)(nil)

func NewUserService(db *gorm.DB, tutorPassphrase, masterTOTP string) *UserService {
	return &UserService{DB: db, TutorPassphrase: tutorPassphrase, MasterTOTP: masterTOTP}
}

// RegisterForm is what a new resident submits.
type RegisterForm struct {
	Username         string `json:"username" form:"username"`
	Password         string `json:"password" form:"password"`
	SecurityQuestion string `json:"securityQuestion" form:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer" form:"securityAnswer"`
}

func (s *UserService) findUser(username string) (*model.User, error) {
	user := &model.User{}
	err := s.DB.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a resident account.
func (s *UserService) Register(form RegisterForm) (*model.User, error) {
	username := strings.TrimSpace(form.Username)
	if username == "" {
		return nil, &logbook.ValidationError{Field: "username", Reason: "required"}
	}
	if form.Password == "" {
		return nil, &logbook.ValidationError{Field: "password", Reason: "required"}
	}
	question := strings.TrimSpace(form.SecurityQuestion)
	answer := crypto.NormalizeAnswer(form.SecurityAnswer)
	if (question == "") != (answer == "") {
		return nil, &logbook.ValidationError{Field: "securityAnswer", Reason: "question and answer go together"}
	}

	hash, err := crypto.HashPasswordAsBcrypt(form.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:         username,
		Password:         hash,
		Role:             logbook.RoleResident,
		SecurityQuestion: question,
	}
	if answer != "" {
		if user.SecurityAnswer, err = crypto.HashPasswordAsBcrypt(answer); err != nil {
			return nil, err
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("user %q: %w", username, logbook.ErrConflict)
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("registered user %s", username)
	return user, nil
}

// CheckUser verifies credentials and returns the user, or nil when they do
// not match. Imported sha256 passwords are rehashed with bcrypt on success.
func (s *UserService) CheckUser(username, password, twoFactorCode string) *model.User {
	user, err := s.findUser(strings.TrimSpace(username))
	if database.IsNotFound(err) {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if user.Password == "" || !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}

	if user.Role == logbook.RoleMaster && s.MasterTOTP != "" {
		if gotp.NewDefaultTOTP(s.MasterTOTP).Now() != twoFactorCode {
			return nil
		}
	}

	if crypto.IsLegacyHash(user.Password) {
		if err := s.setPassword(user, password); err != nil {
			logger.Warning("upgrade legacy password err:", err)
		} else {
			logger.Infof("upgraded password hash of %s", user.Username)
		}
	}
	return user
}

// Authenticate is CheckUser as a logbook.Authenticator.
func (s *UserService) Authenticate(username, password, twoFactorCode string) (logbook.Actor, error) {
	user := s.CheckUser(username, password, twoFactorCode)
	if user == nil {
		return logbook.Actor{}, logbook.ErrUnauthorized
	}
	return user.Actor(), nil
}

// EnterTutorMode checks the shared passphrase and returns a tutor actor
// named after the caller.
func (s *UserService) EnterTutorMode(name, passphrase string) (logbook.Actor, error) {
	if s.TutorPassphrase == "" {
		return logbook.Actor{}, logbook.ErrForbidden
	}
	if passphrase != s.TutorPassphrase {
		return logbook.Actor{}, logbook.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = string(logbook.RoleTutor)
	}
	return logbook.Actor{Name: name, Role: logbook.RoleTutor}, nil
}

// SecurityQuestion returns the question a user set at registration.
func (s *UserService) SecurityQuestion(username string) (string, error) {
	user, err := s.findUser(strings.TrimSpace(username))
	if database.IsNotFound(err) {
		return "", logbook.ErrNotFound
	} else if err != nil {
		return "", err
	}
	if user.SecurityQuestion == "" {
		return "", logbook.ErrNotFound
	}
	return user.SecurityQuestion, nil
}

// ResetPassword sets a new password when answer matches the stored one.
func (s *UserService) ResetPassword(username, answer, newPassword string) error {
	if newPassword == "" {
		return &logbook.ValidationError{Field: "password", Reason: "required"}
	}
	user, err := s.findUser(strings.TrimSpace(username))
	if database.IsNotFound(err) {
		return logbook.ErrUnauthorized
	} else if err != nil {
		return err
	}
	if user.SecurityAnswer == "" || !crypto.CheckPasswordHash(user.SecurityAnswer, crypto.NormalizeAnswer(answer)) {
		return logbook.ErrUnauthorized
	}
	if err := s.setPassword(user, newPassword); err != nil {
		return err
	}
	logger.Infof("password reset for %s", user.Username)
	return nil
}

// ListUsernames returns the owners a tutor can filter by: every resident
// plus anyone else who has logged records.
func (s *UserService) ListUsernames() ([]string, error) {
	var residents, owners []string
	err := s.DB.Model(&model.User{}).
		Where("role = ?", logbook.RoleResident).
		Pluck("username", &residents).Error
	if err != nil {
		return nil, err
	}
	err = s.DB.Model(&model.Procedure{}).
		Distinct("owner").
		Where("owner <> ''").
		Pluck("owner", &owners).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(residents)+len(owners))
	names := make([]string, 0, len(residents)+len(owners))
	for _, n := range append(residents, owners...) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// VerifyActor checks that a session actor is still valid: its account
// exists with the same role, or, for tutors, tutor mode is still enabled.
// Stale actors get ErrUnauthorized.
func (s *UserService) VerifyActor(actor logbook.Actor) error {
	if actor.Role == logbook.RoleTutor {
		if s.TutorPassphrase == "" {
			return logbook.ErrUnauthorized
		}
		return nil
	}
	var count int64
	err := s.DB.Model(&model.User{}).
		Where("username = ? AND role = ?", actor.Name, actor.Role).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("user %q: %w", actor.Name, logbook.ErrUnauthorized)
	}
	return nil
}

func (s *UserService) setPassword(user *model.User, password string) error {
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	if err := s.DB.Model(user).Update("password", hash).Error; err != nil {
		return err
	}
	user.Password = hash
	return nil
}
