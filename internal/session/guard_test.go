package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"healthcare-app-client/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGuard(store Store) (*Guard, *fakeClock) {
	clock := &fakeClock{t: baseTime}
	return NewGuard(store, WithClock(clock.Now)), clock
}

func TestGuard_LoginThenExpire(t *testing.T) {
	store := NewMemoryStore()
	guard, clock := newTestGuard(store)

	token := mintToken(t, "pat@example.com", []string{"ROLE_PATIENT"}, baseTime.Add(10*time.Second))
	if _, err := guard.Login(token); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !guard.IsValid() {
		t.Fatal("expected session to be valid right after login")
	}

	clock.Advance(11 * time.Second)
	if guard.IsValid() {
		t.Fatal("expected session to be invalid after expiry")
	}
	if stored, _ := store.Load(); stored != "" {
		t.Errorf("expected expired credential to be purged, store still holds %q", stored)
	}
}

func TestGuard_LoginRejectsExpiredCredential(t *testing.T) {
	store := NewMemoryStore()
	guard, _ := newTestGuard(store)

	token := mintToken(t, "pat@example.com", []string{"ROLE_PATIENT"}, baseTime)
	_, err := guard.Login(token)
	var expiryErr *ExpiryError
	if !errors.As(err, &expiryErr) {
		t.Fatalf("expected ExpiryError, got %v", err)
	}
	if stored, _ := store.Load(); stored != "" {
		t.Error("expected nothing stored for a rejected login")
	}
}

func TestGuard_MalformedCredentialFailsClosed(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Save("definitely.not.jwt")
	guard, _ := newTestGuard(store)

	if guard.IsValid() {
		t.Fatal("expected malformed credential to be invalid")
	}
	if guard.CurrentSubject() != nil {
		t.Error("expected nil subject")
	}
	if guard.HasRole(models.RolePatient) {
		t.Error("expected HasRole false")
	}
	if stored, _ := store.Load(); stored != "" {
		t.Error("expected malformed credential to be purged")
	}
}

func TestGuard_NoCredential(t *testing.T) {
	guard, _ := newTestGuard(NewMemoryStore())

	if guard.IsValid() {
		t.Error("expected no session")
	}
	if _, err := guard.Credential(); !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}

func TestGuard_HasRoleAndAuthorize(t *testing.T) {
	store := NewMemoryStore()
	guard, _ := newTestGuard(store)
	token := mintToken(t, "doc@example.com", []string{"ROLE_DOCTOR"}, baseTime.Add(time.Hour))
	if _, err := guard.Login(token); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if !guard.HasRole(models.RoleDoctor) {
		t.Error("expected doctor role")
	}
	if guard.HasRole(models.RolePatient) {
		t.Error("did not expect patient role")
	}

	if _, err := guard.Authorize(models.RoleDoctor); err != nil {
		t.Errorf("expected doctor to be authorized, got %v", err)
	}
	if _, err := guard.Authorize(models.RolePatient, models.RoleDoctor); err != nil {
		t.Errorf("expected any-of match, got %v", err)
	}
	if _, err := guard.Authorize(); err != nil {
		t.Errorf("expected any valid session to pass, got %v", err)
	}

	_, err := guard.Authorize(models.RolePatient)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if len(authErr.Required) != 1 || authErr.Required[0] != models.RolePatient {
		t.Errorf("unexpected required roles: %v", authErr.Required)
	}
}

func TestGuard_AuthorizeWithoutSession(t *testing.T) {
	guard, _ := newTestGuard(NewMemoryStore())

	_, err := guard.Authorize(models.RolePatient)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected cause ErrNoCredential, got %v", authErr.Err)
	}
	if !IsSessionError(err) {
		t.Error("expected IsSessionError to match")
	}
}

func TestGuard_ReevaluatesEveryCheck(t *testing.T) {
	store := NewMemoryStore()
	guard, clock := newTestGuard(store)
	token := mintToken(t, "doc@example.com", []string{"ROLE_DOCTOR"}, baseTime.Add(time.Minute))
	if _, err := guard.Login(token); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if !guard.HasRole(models.RoleDoctor) {
		t.Fatal("expected role before expiry")
	}
	clock.Advance(time.Minute)
	if guard.HasRole(models.RoleDoctor) {
		t.Fatal("expected role check to fail once the credential expired")
	}
}

func TestGuard_LogoutNotifies(t *testing.T) {
	store := NewMemoryStore()
	guard, _ := newTestGuard(store)
	token := mintToken(t, "pat@example.com", []string{"ROLE_PATIENT"}, baseTime.Add(time.Hour))
	if _, err := guard.Login(token); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	calls := 0
	guard.OnLogout(func() { calls++ })

	if err := guard.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if guard.IsValid() {
		t.Error("expected session to end on logout")
	}
	if calls != 1 {
		t.Errorf("expected logout hook to run once, ran %d times", calls)
	}
}

func TestGuard_InvalidateOnlyPurgesRejectedCredential(t *testing.T) {
	store := NewMemoryStore()
	guard, _ := newTestGuard(store)
	calls := 0
	guard.OnLogout(func() { calls++ })

	old := mintToken(t, "pat@example.com", []string{"ROLE_PATIENT"}, baseTime.Add(time.Hour))
	fresh := mintToken(t, "pat@example.com", []string{"ROLE_PATIENT"}, baseTime.Add(2*time.Hour))
	if _, err := guard.Login(fresh); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	guard.Invalidate(old)
	if !guard.IsValid() {
		t.Fatal("expected newer credential to survive a stale rejection")
	}
	if calls != 0 {
		t.Errorf("expected no logout notification, got %d", calls)
	}

	guard.Invalidate(fresh)
	if guard.IsValid() {
		t.Fatal("expected rejected credential to be purged")
	}
	if calls != 1 {
		t.Errorf("expected one logout notification, got %d", calls)
	}
}

func TestDBStore_SingleSlot(t *testing.T) {
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "credentials.db"),
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	store := NewDBStore(db)

	if got, err := store.Load(); err != nil || got != "" {
		t.Fatalf("expected empty slot, got %q, %v", got, err)
	}

	if err := store.Save("first"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save("second"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if got, _ := store.Load(); got != "second" {
		t.Fatalf("expected second, got %q", got)
	}

	var count int64
	db.Model(&models.StoredCredential{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one row, got %d", count)
	}

	if ok, _ := store.ClearIf("first"); ok {
		t.Error("expected ClearIf to ignore a credential that is no longer stored")
	}
	if ok, _ := store.ClearIf("second"); !ok {
		t.Error("expected ClearIf to clear the stored credential")
	}
	if got, _ := store.Load(); got != "" {
		t.Errorf("expected empty slot, got %q", got)
	}

	_ = store.Save("third")
	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got, _ := store.Load(); got != "" {
		t.Errorf("expected empty slot after Clear, got %q", got)
	}
}
