package service

import (
	"context"
	"testing"

	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.user(t, "1001", "Alice", false)

	token, sess, err := e.users.Login(ctx, " 1001 ", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, u.ID, sess.User.ID)

	loaded, err := e.sessions.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)

	_, _, err = e.users.Login(ctx, "1001", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = e.users.Login(ctx, "9999", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = e.users.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	require.NoError(t, e.users.Logout(ctx, loaded))
	_, err = e.sessions.Load(ctx, token)
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}

func TestCreateUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u := e.user(t, "1001", "Alice", true)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, u.CanCreateMeeting)

	_, err := e.users.CreateUser(ctx, NewUserInput{NIM: "1001", Name: "Dup", Password: "secret123"})
	assert.ErrorIs(t, err, repository.ErrUserNIMExists)

	_, err = e.users.CreateUser(ctx, NewUserInput{NIM: "1002", Name: "Short", Password: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = e.users.CreateUser(ctx, NewUserInput{NIM: "1003", Password: "secret123"})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.user(t, "1001", "Alice", false)

	cases := []struct {
		name string
		in   PasswordChange
		want error
	}{
		{"missing old", PasswordChange{New: "newpass", Confirm: "newpass"}, ErrPasswordRequired},
		{"missing new", PasswordChange{Old: "secret123"}, ErrPasswordRequired},
		{"too short", PasswordChange{Old: "secret123", New: "abc", Confirm: "abc"}, ErrPasswordTooShort},
		{"unchanged", PasswordChange{Old: "secret123", New: "secret123", Confirm: "secret123"}, ErrPasswordUnchanged},
		{"mismatch", PasswordChange{Old: "secret123", New: "newpass", Confirm: "newpas"}, ErrPasswordMismatch},
		{"wrong old", PasswordChange{Old: "nope1234", New: "newpass", Confirm: "newpass"}, ErrWrongPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, e.users.ChangePassword(ctx, u.ID, tc.in), tc.want)
		})
	}

	require.NoError(t, e.users.ChangePassword(ctx, u.ID, PasswordChange{Old: "secret123", New: "newpass", Confirm: "newpass"}))

	_, _, err := e.users.Login(ctx, "1001", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = e.users.Login(ctx, "1001", "newpass")
	assert.NoError(t, err)
}

func TestUpdateProfileAndList(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.user(t, "1001", "Alice", false)
	e.user(t, "1002", "Bob", false)

	name, divisi, photo := "  Alice A.  ", "humas", "avatars/1001.jpg"
	updated, err := e.users.UpdateProfile(ctx, u.ID, ProfileInput{Name: &name, Divisi: &divisi, ProfilePhoto: &photo})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Name)
	assert.Equal(t, "humas", updated.Divisi)
	assert.Equal(t, "avatars/1001.jpg", updated.ProfilePhoto)

	blank := " "
	_, err = e.users.UpdateProfile(ctx, u.ID, ProfileInput{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)

	list, err := e.users.ListUsers(ctx, repository.UserFilter{Divisi: "humas"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, u.ID, list[0].ID)

	all, err := e.users.ListUsers(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
