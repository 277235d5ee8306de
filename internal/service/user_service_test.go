package service

import (
	"context"
	"testing"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/permission"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, RegisterRequest{Email: "Cashier@Example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != model.RoleEmployee {
		t.Errorf("role = %q, want employee", user.Role)
	}
	if user.Email != "cashier@example.com" {
		t.Errorf("email = %q, want lower-cased", user.Email)
	}
	if user.Permissions == nil || len(user.Permissions.Allow) == 0 {
		t.Errorf("employee defaults not seeded: %+v", user.Permissions)
	}

	_, err = env.users.Register(ctx, RegisterRequest{Email: "cashier@example.com", Password: "hunter2hunter2"})
	wantKind(t, err, apperror.KindConflict)

	pair, err := env.users.Login(ctx, LoginRequest{Email: "cashier@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	authed, err := env.users.Authenticate(ctx, pair.AccessToken)
	if err != nil || authed.ID != user.ID {
		t.Fatalf("Authenticate = %v, %v", authed, err)
	}
	// A refresh token is not an access token.
	_, err = env.users.Authenticate(ctx, pair.RefreshToken)
	wantKind(t, err, apperror.KindUnauthenticated)

	refreshed, err := env.users.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	if err != nil || refreshed.AccessToken == "" {
		t.Fatalf("Refresh = %v, %v", refreshed, err)
	}

	_, err = env.users.Login(ctx, LoginRequest{Email: "cashier@example.com", Password: "wrong-password"})
	wantKind(t, err, apperror.KindUnauthenticated)
	_, err = env.users.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"})
	wantKind(t, err, apperror.KindUnauthenticated)
}

func TestDisabledUserIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.users.Register(ctx, RegisterRequest{Email: "temp@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, err := env.users.Login(ctx, LoginRequest{Email: "temp@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	disabled := true
	if _, err := env.users.UpdateUser(ctx, env.actor, user.ID, UpdateUserRequest{Disabled: &disabled}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	_, err = env.users.Authenticate(ctx, pair.AccessToken)
	wantKind(t, err, apperror.KindForbidden)
	_, err = env.users.Login(ctx, LoginRequest{Email: "temp@example.com", Password: "hunter2hunter2"})
	wantKind(t, err, apperror.KindForbidden)
}

func TestRoleChangeResetsOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, err := env.users.Register(ctx, RegisterRequest{Email: "shift@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := env.users.UpdateUser(ctx, env.actor, user.ID, UpdateUserRequest{
		Permissions: &PermissionsDoc{Allow: []string{"inventory.read"}, Deny: []string{"sales.create"}},
	})
	if err != nil {
		t.Fatalf("UpdateUser overrides: %v", err)
	}
	if len(updated.Permissions.Deny) != 1 {
		t.Errorf("deny = %v", updated.Permissions.Deny)
	}

	role := model.RoleManager
	updated, err = env.users.UpdateUser(ctx, env.actor, user.ID, UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser role: %v", err)
	}
	want := permission.DefaultPermissions(model.RoleManager).Sorted()
	if len(updated.Permissions.Allow) != len(want) || len(updated.Permissions.Deny) != 0 {
		t.Errorf("overrides after role change = %+v", updated.Permissions)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.users.DeleteUser(ctx, env.actor, env.actor)
	wantKind(t, err, apperror.KindInvalidInput)

	user, err := env.users.Register(ctx, RegisterRequest{Email: "gone@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := env.users.DeleteUser(ctx, env.actor, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	_, err = env.users.GetUserByID(ctx, user.ID)
	wantKind(t, err, apperror.KindNotFound)
}

func TestRegisterRejectsLongPassword(t *testing.T) {
	env := newTestEnv(t)
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := env.users.Register(context.Background(), RegisterRequest{Email: "long@example.com", Password: string(long)})
	wantKind(t, err, apperror.KindInvalidInput)
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.users.ForgotPassword(ctx, ForgotPasswordRequest{Email: "admin@example.com"}); err != nil {
		t.Errorf("known email: %v", err)
	}
	if err := env.users.ForgotPassword(ctx, ForgotPasswordRequest{Email: "nobody@example.com"}); err != nil {
		t.Errorf("unknown email: %v", err)
	}
	err := env.users.ForgotPassword(ctx, ForgotPasswordRequest{Email: "not-an-email"})
	wantKind(t, err, apperror.KindInvalidInput)
}
