package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/auth"
	"github.com/stockhubapp/stockhub/internal/http/middlewares"
)

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	return f.verifyFn(token)
}

func memberClaims() *auth.Claims {
	return &auth.Claims{UserID: "user-1", OrganizationID: "org-1", RoleID: 2}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: "admin-1", OrganizationID: "org-1", RoleID: 1}
}

func protectedRouter(claims *auth.Claims, verifyErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	m := middlewares.NewAuthMiddleware(&fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			if verifyErr != nil {
				return nil, verifyErr
			}
			return claims, nil
		},
	})

	r := gin.New()

	api := r.Group("/", m.RequireAuth())

	api.GET("/whoami", func(c *gin.Context) {
		userID, _ := middlewares.UserIDFromContext(c)
		orgID, _ := middlewares.OrganizationFromContext(c)
		roleID, _ := middlewares.RoleIDFromContext(c)

		c.JSON(http.StatusOK, gin.H{"userID": userID, "organizationID": orgID, "roleID": roleID})
	})

	api.GET("/admin-only", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api.GET("/users/:id", m.RequireSelfOrAdmin("id"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func get(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)

	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	r := protectedRouter(memberClaims(), nil)

	if w := get(r, "/whoami", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthRejectsNonBearerScheme(t *testing.T) {
	r := protectedRouter(memberClaims(), nil)

	if w := get(r, "/whoami", "Basic dXNlcjpwYXNz"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	r := protectedRouter(nil, errors.New("signature invalid"))

	if w := get(r, "/whoami", "Bearer not-a-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	r := protectedRouter(memberClaims(), nil)

	w := get(r, "/whoami", "Bearer good-token")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", w.Code, w.Body.String())
	}

	want := `{"organizationID":"org-1","roleID":2,"userID":"user-1"}`

	if w.Body.String() != want {
		t.Fatalf("identity not attached: %s", w.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	if w := get(protectedRouter(memberClaims(), nil), "/admin-only", "Bearer t"); w.Code != http.StatusForbidden {
		t.Fatalf("member must be forbidden, got %d", w.Code)
	}

	if w := get(protectedRouter(adminClaims(), nil), "/admin-only", "Bearer t"); w.Code != http.StatusOK {
		t.Fatalf("admin must pass, got %d", w.Code)
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	member := protectedRouter(memberClaims(), nil)

	if w := get(member, "/users/user-1", "Bearer t"); w.Code != http.StatusOK {
		t.Fatalf("self access must pass, got %d", w.Code)
	}

	if w := get(member, "/users/user-2", "Bearer t"); w.Code != http.StatusForbidden {
		t.Fatalf("cross-user access must be forbidden, got %d", w.Code)
	}

	admin := protectedRouter(adminClaims(), nil)

	if w := get(admin, "/users/user-2", "Bearer t"); w.Code != http.StatusOK {
		t.Fatalf("admin bypass must pass, got %d", w.Code)
	}
}
