package service

import (
	"testing"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/util/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlzd/gotp"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t), "", "")

	u, err := svc.Register(RegisterForm{Username: " alice ", Password: "pw", SecurityQuestion: "Pet?", SecurityAnswer: " Rex "})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, logbook.RoleResident, u.Role)

	_, err = svc.Register(RegisterForm{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, logbook.ErrConflict)
	_, err = svc.Register(RegisterForm{Username: "bob"})
	assert.ErrorIs(t, err, logbook.ErrValidation)

	actor, err := svc.Authenticate("alice", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, logbook.Actor{Name: "alice", Role: logbook.RoleResident}, actor)

	_, err = svc.Authenticate("alice", "wrong", "")
	assert.ErrorIs(t, err, logbook.ErrUnauthorized)
	_, err = svc.Authenticate("nobody", "pw", "")
	assert.ErrorIs(t, err, logbook.ErrUnauthorized)
}

func TestResetPassword(t *testing.T) {
	svc := NewUserService(newTestDB(t), "", "")
	_, err := svc.Register(RegisterForm{Username: "alice", Password: "pw", SecurityQuestion: "Pet?", SecurityAnswer: "Rex"})
	require.NoError(t, err)

	q, err := svc.SecurityQuestion("alice")
	require.NoError(t, err)
	assert.Equal(t, "Pet?", q)

	assert.ErrorIs(t, svc.ResetPassword("alice", "Max", "new"), logbook.ErrUnauthorized)
	require.NoError(t, svc.ResetPassword("alice", "  rex ", "new"))

	_, err = svc.Authenticate("alice", "new", "")
	assert.NoError(t, err)
	_, err = svc.Authenticate("alice", "pw", "")
	assert.ErrorIs(t, err, logbook.ErrUnauthorized)
}

func TestLegacyPasswordIsUpgraded(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.User{Username: "old", Password: crypto.LegacyHash("pw"), Role: logbook.RoleResident}).Error)
	svc := NewUserService(db, "", "")

	_, err := svc.Authenticate("old", "pw", "")
	require.NoError(t, err)

	var u model.User
	require.NoError(t, db.Where("username = ?", "old").First(&u).Error)
	assert.False(t, crypto.IsLegacyHash(u.Password))
	assert.True(t, crypto.CheckPasswordHash(u.Password, "pw"))
}

func TestImportedUserWithoutPasswordCannotLogIn(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.User{Username: "carol", Role: logbook.RoleResident}).Error)

	_, err := NewUserService(db, "", "").Authenticate("carol", "", "")
	assert.ErrorIs(t, err, logbook.ErrUnauthorized)
}

func TestMasterTwoFactor(t *testing.T) {
	db := newTestDB(t)
	secret := gotp.RandomSecret(16)
	svc := NewUserService(db, "", secret)

	_, err := svc.Authenticate("admin", "admin", "000000x")
	assert.ErrorIs(t, err, logbook.ErrUnauthorized)

	actor, err := svc.Authenticate("admin", "admin", gotp.NewDefaultTOTP(secret).Now())
	require.NoError(t, err)
	assert.Equal(t, logbook.RoleMaster, actor.Role)
}

func TestEnterTutorMode(t *testing.T) {
	svc := NewUserService(newTestDB(t), "tutor01", "")

	actor, err := svc.EnterTutorMode("Dr. Weber", "tutor01")
	require.NoError(t, err)
	assert.Equal(t, logbook.Actor{Name: "Dr. Weber", Role: logbook.RoleTutor}, actor)

	_, err = svc.EnterTutorMode("Dr. Weber", "guess")
	assert.ErrorIs(t, err, logbook.ErrUnauthorized)

	svc.TutorPassphrase = ""
	_, err = svc.EnterTutorMode("Dr. Weber", "")
	assert.ErrorIs(t, err, logbook.ErrForbidden)
}

func TestListUsernames(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, "", "")
	for _, name := range []string{"zoe", "alice"} {
		_, err := svc.Register(RegisterForm{Username: name, Password: "pw"})
		require.NoError(t, err)
	}
	names, err := svc.ListUsernames()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "zoe"}, names)

	_, err = NewProcedureService(db).Insert(master, entry("01.01.2024", "EVAR", logbook.CategoryOperation, logbook.OpRoleSurgeon))
	require.NoError(t, err)
	names, err = svc.ListUsernames()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "alice", "zoe"}, names)
}

func TestVerifyActor(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, "tutor01", "")
	admin := NewUserAdminService(db)

	u, err := admin.CreateUser("alice", "pw", "")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyActor(alice))
	require.NoError(t, svc.VerifyActor(master))
	require.NoError(t, svc.VerifyActor(tutor))

	assert.ErrorIs(t, svc.VerifyActor(logbook.Actor{Name: "alice", Role: logbook.RoleMaster}), logbook.ErrUnauthorized)
	assert.ErrorIs(t, svc.VerifyActor(bob), logbook.ErrUnauthorized)

	require.NoError(t, admin.DeleteUser(master, u.Id))
	assert.ErrorIs(t, svc.VerifyActor(alice), logbook.ErrUnauthorized)

	svc.TutorPassphrase = ""
	assert.ErrorIs(t, svc.VerifyActor(tutor), logbook.ErrUnauthorized)
}

func TestCreateUserRequiresCredentials(t *testing.T) {
	admin := NewUserAdminService(newTestDB(t))

	var verr *logbook.ValidationError
	_, err := admin.CreateUser("  ", "pw", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)

	_, err = admin.CreateUser("alice", "", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestDeleteUserCascades(t *testing.T) {
	db := newTestDB(t)
	admin := NewUserAdminService(db)
	procedures := NewProcedureService(db)

	u, err := admin.CreateUser("alice", "pw", "")
	require.NoError(t, err)
	_, err = admin.CreateUser("alice", "pw", "")
	assert.ErrorIs(t, err, logbook.ErrConflict)
	_, err = admin.CreateUser("t", "pw", logbook.RoleTutor)
	assert.ErrorIs(t, err, logbook.ErrValidation)

	_, err = procedures.Insert(alice, entry("01.01.2024", "EVAR", logbook.CategoryOperation, logbook.OpRoleSurgeon))
	require.NoError(t, err)
	_, err = procedures.Insert(bob, entry("01.01.2024", "EVAR", logbook.CategoryOperation, logbook.OpRoleSurgeon))
	require.NoError(t, err)

	users, err := admin.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[1].Procedures)

	assert.ErrorIs(t, admin.DeleteUser(alice, u.Id), logbook.ErrForbidden)
	require.NoError(t, admin.DeleteUser(master, u.Id))
	assert.ErrorIs(t, admin.DeleteUser(master, u.Id), logbook.ErrNotFound)

	left, err := procedures.ListAll(logbook.Filter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "bob", left[0].Owner)

	assert.ErrorIs(t, admin.DeleteUserByName(master, "admin"), logbook.ErrForbidden)
}
