package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
)

var testSecret = []byte("test-secret")

func authRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", am.RequireAuth())
	api.GET("/whoami", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.LearnerID.String())
	})
	api.GET("/admin", am.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func doAuth(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthAcceptsLearnerToken(t *testing.T) {
	learner := uuid.New()
	tok, err := SignToken(testSecret, learner, "", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec := doAuth(authRouter(NewAuthMiddleware(logger.Nop(), testSecret, "")), "/api/whoami", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != learner.String() {
		t.Fatalf("learner: got=%q want=%q", rec.Body.String(), learner)
	}
}

func TestRequireAuthRejects(t *testing.T) {
	r := authRouter(NewAuthMiddleware(logger.Nop(), testSecret, ""))
	learner := uuid.New()

	expired, _ := SignToken(testSecret, learner, "", -time.Hour)
	wrongKey, _ := SignToken([]byte("other"), learner, "", time.Hour)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: learner.String()},
	}).SignedString(testSecret)
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)

	cases := map[string]string{
		"missing":     "",
		"garbage":     "not.a.token",
		"expired":     expired,
		"wrong key":   wrongKey,
		"no expiry":   noExp,
		"bad subject": badSubject,
	}
	for name, tok := range cases {
		if rec := doAuth(r, "/api/whoami", tok); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got=%d want=401", name, rec.Code)
		}
	}
}

func TestRequireAuthChecksIssuer(t *testing.T) {
	learner := uuid.New()
	tok, _ := SignToken(testSecret, learner, "", time.Hour)
	r := authRouter(NewAuthMiddleware(logger.Nop(), testSecret, "https://id.example.com"))
	if rec := doAuth(r, "/api/whoami", tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("token without issuer: got=%d want=401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := authRouter(NewAuthMiddleware(logger.Nop(), testSecret, ""))
	learnerTok, _ := SignToken(testSecret, uuid.New(), "", time.Hour)
	adminTok, _ := SignToken(testSecret, uuid.New(), "Admin", time.Hour)

	if rec := doAuth(r, "/api/admin", learnerTok); rec.Code != http.StatusForbidden {
		t.Fatalf("learner on admin route: got=%d want=403", rec.Code)
	}
	if rec := doAuth(r, "/api/admin", adminTok); rec.Code != http.StatusNoContent {
		t.Fatalf("admin: got=%d want=204", rec.Code)
	}
}

func TestEmptySecretRejectsEverything(t *testing.T) {
	tok, _ := SignToken(testSecret, uuid.New(), "", time.Hour)
	r := authRouter(NewAuthMiddleware(logger.Nop(), nil, ""))
	if rec := doAuth(r, "/api/whoami", tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("got=%d want=401", rec.Code)
	}
}
