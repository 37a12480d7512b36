package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mikepea/quorum/pkg/quorum/models"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return f[username], nil
}

func setupTestRouter(issuer *TokenIssuer, users UserFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireUser(issuer, users), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	if hash == password {
		t.Error("Hash should not equal plain password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword should return true for correct password")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword should return false for incorrect password")
	}

	other, err := HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}
	if other == hash {
		t.Error("Expected a fresh salt for every hash")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("password", "not-a-bcrypt-hash") {
		t.Error("CheckPassword should return false for a malformed hash")
	}
}

func TestPasswordTooLong(t *testing.T) {
	_, err := HashPasswordWithCost(strings.Repeat("a", 73), bcrypt.MinCost)
	if !IsPasswordTooLong(err) {
		t.Errorf("Expected ErrPasswordTooLong, got %v", err)
	}
}

func TestJWTToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("test_user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.Username() != "test_user" {
		t.Errorf("Expected subject test_user, got %s", claims.Username())
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != time.Hour {
		t.Errorf("Expected a one hour lifetime, got %v", lifetime)
	}
}

func TestNewTokenIssuerDefaultTTL(t *testing.T) {
	if got := NewTokenIssuer(testSecret, 0).TTL(); got != DefaultTokenTTL {
		t.Errorf("Expected default TTL %v, got %v", DefaultTokenTTL, got)
	}
}

func TestInvalidToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	if _, err := issuer.Verify("invalid-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}

	token, _ := NewTokenIssuer("other-secret", time.Hour).Issue("test_user")
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for a foreign signature, got %v", err)
	}

	valid, _ := issuer.Issue("test_user")
	pos := len(valid) - 5
	replacement := "A"
	if valid[pos] == 'A' {
		replacement = "B"
	}
	tampered := valid[:pos] + replacement + valid[pos+1:]
	if _, err := issuer.Verify(tampered); err == nil {
		t.Error("Expected error for a tampered signature")
	}
}

func TestTokenWithoutSubjectOrIssuer(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	now := time.Now()

	sign := func(claims jwt.RegisteredClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		return token
	}

	noSubject := sign(jwt.RegisteredClaims{
		Issuer:    "quorum",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if _, err := issuer.Verify(noSubject); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken without subject, got %v", err)
	}

	wrongIssuer := sign(jwt.RegisteredClaims{
		Subject:   "test_user",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if _, err := issuer.Verify(wrongIssuer); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for another issuer, got %v", err)
	}

	noExpiry := sign(jwt.RegisteredClaims{Subject: "test_user", Issuer: "quorum"})
	if _, err := issuer.Verify(noExpiry); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken without expiry, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue("test_user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestRequireUser(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	users := fakeUsers{"test_user": {ID: 1, Username: "test_user"}}
	router := setupTestRouter(issuer, users)

	token, _ := issuer.Issue("test_user")
	resp := doGet(router, "Bearer "+token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"username":"test_user"`) {
		t.Errorf("Expected the current user in the response, got %s", resp.Body.String())
	}
}

func TestRequireUserRejects(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	users := fakeUsers{"test_user": {ID: 1, Username: "test_user"}}
	router := setupTestRouter(issuer, users)

	valid, _ := issuer.Issue("test_user")
	ghost, _ := issuer.Issue("deleted_user")

	tests := []struct {
		name   string
		header string
		detail string
	}{
		{"no header", "", "Not authenticated"},
		{"wrong scheme", "Basic " + valid, "Not authenticated"},
		{"missing token", "Bearer ", "Not authenticated"},
		{"garbage token", "Bearer garbage", "Could not validate credentials"},
		{"unknown user", "Bearer " + ghost, "Could not validate credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doGet(router, tt.header)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("Expected status 401, got %d", resp.Code)
			}
			if got := resp.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("Expected WWW-Authenticate: Bearer, got %q", got)
			}
			if !strings.Contains(resp.Body.String(), tt.detail) {
				t.Errorf("Expected detail %q, got %s", tt.detail, resp.Body.String())
			}
		})
	}
}
