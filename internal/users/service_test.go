package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/avelarde/shopflow-backend/pkg/config"
	dbpkg "github.com/avelarde/shopflow-backend/pkg/db"
	"github.com/avelarde/shopflow-backend/pkg/db/models"
	"github.com/avelarde/shopflow-backend/pkg/enums"
	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
	"github.com/avelarde/shopflow-backend/pkg/security"
	"github.com/avelarde/shopflow-backend/pkg/types"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func newTestService(t *testing.T) (Service, *dbpkg.Client) {
	t.Helper()

	dsn := fmt.Sprintf("file:users_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := dbpkg.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	svc, err := NewService(NewRepository(client.DB()), fastArgon)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, client
}

func mustCreateUser(t *testing.T, client *dbpkg.Client, password string) *models.User {
	t.Helper()

	hash, err := security.HashPassword(password, fastArgon)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := &models.User{
		Email:        fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8]),
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if err := client.DB().Create(u).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u
}

func TestGetProfileOmitsCredentials(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	u := mustCreateUser(t, client, "hunter22hunter")

	profile, err := svc.GetProfile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Email != u.Email || profile.FirstName != "Ada" {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.Addresses == nil {
		t.Error("expected empty address slice, not nil")
	}

	_, err = svc.GetProfile(context.Background(), uuid.New())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	u := mustCreateUser(t, client, "hunter22hunter")

	first := "Grace"
	profile, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if profile.FirstName != "Grace" || profile.LastName != "Lovelace" {
		t.Errorf("unexpected profile %+v", profile)
	}

	empty := "   "
	_, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{LastName: &empty})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	u := mustCreateUser(t, client, "old-password-1")

	err := svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "new-password-1"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for wrong current password, got %v", err)
	}

	err = svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "old-password-1", NewPassword: "short"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "old-password-1", NewPassword: "new-password-1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	var stored models.User
	if err := client.DB().First(&stored, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("loading user: %v", err)
	}
	ok, err := security.VerifyPassword("new-password-1", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected new password to verify, ok=%v err=%v", ok, err)
	}
}

func TestAddressBook(t *testing.T) {
	t.Parallel()

	svc, client := newTestService(t)
	ctx := context.Background()
	u := mustCreateUser(t, client, "hunter22hunter")

	home := types.ShippingAddress{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62704", Country: "US"}
	office := types.ShippingAddress{Street: "9 Work Ave", City: "Springfield", State: "IL", ZipCode: "62705", Country: "US"}

	if _, err := svc.AddAddress(ctx, u.ID, types.ShippingAddress{Street: "only street"}); err == nil {
		t.Fatal("expected validation error for incomplete address")
	}

	profile, err := svc.AddAddress(ctx, u.ID, home)
	if err != nil {
		t.Fatalf("AddAddress: %v", err)
	}
	// Duplicate adds are a no-op.
	profile, err = svc.AddAddress(ctx, u.ID, home)
	if err != nil {
		t.Fatalf("AddAddress duplicate: %v", err)
	}
	if len(profile.Addresses) != 1 {
		t.Fatalf("expected 1 address after duplicate add, got %d", len(profile.Addresses))
	}

	profile, err = svc.AddAddress(ctx, u.ID, office)
	if err != nil {
		t.Fatalf("AddAddress: %v", err)
	}
	if len(profile.Addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(profile.Addresses))
	}

	profile, err = svc.RemoveAddress(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("RemoveAddress: %v", err)
	}
	if len(profile.Addresses) != 1 || profile.Addresses[0] != office {
		t.Errorf("expected only the office address to remain, got %v", profile.Addresses)
	}

	_, err = svc.RemoveAddress(ctx, u.ID, 5)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for out-of-range index, got %v", err)
	}
}
