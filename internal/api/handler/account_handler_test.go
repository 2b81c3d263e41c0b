package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/service"
)

type fakeAdminAPI struct {
	passwords map[string]string
	deleted   []string
}

func (a *fakeAdminAPI) UpdatePassword(_ context.Context, userID, newPassword string) error {
	if a.passwords == nil {
		a.passwords = map[string]string{}
	}
	a.passwords[userID] = newPassword
	return nil
}

func (a *fakeAdminAPI) DeleteUser(_ context.Context, userID string) error {
	a.deleted = append(a.deleted, userID)
	return nil
}

type fakeEmployeeRepo struct {
	unlinked []string
}

func (r *fakeEmployeeRepo) FindByAuthUserID(context.Context, string) (*domain.Employee, error) {
	return nil, nil
}
func (r *fakeEmployeeRepo) FindByEmail(context.Context, string) (*domain.Employee, error) {
	return nil, nil
}
func (r *fakeEmployeeRepo) LinkAuthUser(context.Context, string, string) error { return nil }
func (r *fakeEmployeeRepo) UnlinkAuthUser(_ context.Context, employeeID string) error {
	r.unlinked = append(r.unlinked, employeeID)
	return nil
}

type fakeClientRepo struct{}

func (fakeClientRepo) FindByAuthUserID(context.Context, string) (*domain.Client, error) {
	return nil, nil
}
func (fakeClientRepo) UnlinkAuthUser(context.Context, string) error { return nil }

type fakeRoleRepo struct{}

func (fakeRoleRepo) DeleteByUserID(context.Context, string) error { return nil }

func newAccountHandlerFixture(t *testing.T) (*AccountHandler, *fakeAdminAPI, *fakeEmployeeRepo) {
	t.Helper()
	admin := &fakeAdminAPI{}
	employees := &fakeEmployeeRepo{}
	svc := service.NewAccountService(admin, employees, fakeClientRepo{}, fakeRoleRepo{}, zerolog.Nop())
	return NewAccountHandler(svc), admin, employees
}

func TestAccountHandler_ResetPassword(t *testing.T) {
	h, admin, _ := newAccountHandlerFixture(t)

	c, rec := jsonContext(t, http.MethodPost, "/account/reset-password",
		`{"user_id":"u1","new_password":"hunter22"}`)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if admin.passwords["u1"] != "hunter22" {
		t.Fatalf("password not forwarded: %+v", admin.passwords)
	}
}

func TestAccountHandler_ResetPassword_TooShort(t *testing.T) {
	h, admin, _ := newAccountHandlerFixture(t)

	c, _ := jsonContext(t, http.MethodPost, "/account/reset-password",
		`{"user_id":"u1","new_password":"abc"}`)
	if err := h.ResetPassword(c); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(admin.passwords) != 0 {
		t.Fatalf("short password must never reach the admin API")
	}
}

func TestAccountHandler_DeleteUser(t *testing.T) {
	h, admin, employees := newAccountHandlerFixture(t)

	c, rec := jsonContext(t, http.MethodPost, "/account/delete",
		`{"user_id":"u1","user_type":"employee","record_id":"e1"}`)
	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(employees.unlinked) != 1 || employees.unlinked[0] != "e1" {
		t.Fatalf("expected employee e1 unlinked, got %v", employees.unlinked)
	}
	if len(admin.deleted) != 1 || admin.deleted[0] != "u1" {
		t.Fatalf("expected auth user u1 deleted, got %v", admin.deleted)
	}
}

func TestAccountHandler_DeleteUser_UnknownTypeRejected(t *testing.T) {
	h, admin, _ := newAccountHandlerFixture(t)

	c, _ := jsonContext(t, http.MethodPost, "/account/delete",
		`{"user_id":"u1","user_type":"robot","record_id":"e1"}`)
	if err := h.DeleteUser(c); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(admin.deleted) != 0 {
		t.Fatalf("nothing may be deleted on a rejected request")
	}
}
