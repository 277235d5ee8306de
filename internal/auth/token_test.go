package auth

import (
	"strings"
	"testing"
	"time"

	"smartpos/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestService() *TokenService {
	return NewTokenService("test-secret", time.Hour, 24*time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	pair, err := svc.IssuePair(id.String())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	claims, err := svc.Parse(pair.AccessToken, TypeAccess)
	if err != nil {
		t.Fatalf("Parse access: %v", err)
	}
	got, _ := claims.UserID()
	if got != id {
		t.Errorf("subject = %v, want %v", got, id)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Error("exp and iat must be set")
	}

	if _, err := svc.Parse(pair.RefreshToken, TypeRefresh); err != nil {
		t.Fatalf("Parse refresh: %v", err)
	}
}

func TestParseRejects(t *testing.T) {
	svc := newTestService()
	id := uuid.NewString()
	access, _ := svc.Issue(id, TypeAccess)
	refresh, _ := svc.Issue(id, TypeRefresh)

	expired := newTestService()
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.Issue(id, TypeAccess)

	other := NewTokenService("other-secret", time.Hour, time.Hour)
	forged, _ := other.Issue(id, TypeAccess)

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": id, "type": TypeAccess, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	badSubject, _ := svc.Issue("not-a-uuid", TypeAccess)

	tests := []struct {
		name     string
		token    string
		wantType string
	}{
		{"refresh used as access", refresh, TypeAccess},
		{"access used as refresh", access, TypeRefresh},
		{"expired", stale, TypeAccess},
		{"wrong secret", forged, TypeAccess},
		{"alg none", noneAlg, TypeAccess},
		{"garbage", "abc.def.ghi", TypeAccess},
		{"truncated", access[:len(access)-4], TypeAccess},
		{"subject not uuid", badSubject, TypeAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.token, tt.wantType)
			if !apperror.Is(err, apperror.KindUnauthenticated) {
				t.Fatalf("want Unauthenticated, got %v", err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}

	long := strings.Repeat("a", MaxPasswordBytes+1)
	if _, err := HashPassword(long); !apperror.Is(err, apperror.KindInvalidInput) {
		t.Errorf("long password: want InvalidInput, got %v", err)
	}
	if CheckPassword(hash, long) {
		t.Error("over-long password must never match")
	}
}
