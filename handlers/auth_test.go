package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stampcard-backend/models"

	"github.com/google/uuid"
)

func TestRegisterSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]string{
		"email":    "new@test.com",
		"password": "password123",
		"name":     "New User",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["refresh_token"] == nil {
		t.Fatal("expected token pair in response")
	}
	user := resp["user"].(map[string]interface{})
	if user["role"] != models.RoleCustomer {
		t.Fatalf("new accounts must be customers, got %v", user["role"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "taken@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]string{
		"email":    "taken@test.com",
		"password": "password123",
	}))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterShortPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]string{
		"email":    "short@test.com",
		"password": "short",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "login@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login@test.com",
		"password": "password123",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["token"] == nil {
		t.Fatal("expected token in response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "login2@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login2@test.com",
		"password": "wrong-password",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginBlockedUser(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	user, _ := seedTestUser(db, "blocked@test.com", models.RoleCustomer)
	db.Model(&user).Update("is_blocked", true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "blocked@test.com",
		"password": "password123",
	}))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRotatesSession(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, oldToken := seedTestUser(db, "rotate@test.com", models.RoleCustomer)

	// Old token works before the new login.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, oldToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before rotation, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "rotate@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", w.Code, w.Body.String())
	}
	newToken := parseResponse(w)["token"].(string)

	// Token from the earlier session is now rejected.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, oldToken))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for old session token, got %d", w.Code)
	}

	// The fresh one works.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, newToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for new token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, token := seedTestUser(db, "logout@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/auth/logout", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	user, token := seedTestUser(db, "profile@test.com", models.RoleCustomer)
	db.Model(&user).Updates(map[string]interface{}{"purchases": 7, "current_offer_progress": 3})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["email"] != "profile@test.com" {
		t.Fatalf("unexpected email: %v", resp["email"])
	}
	if resp["purchases"].(float64) != 7 {
		t.Fatalf("expected 7 purchases, got %v", resp["purchases"])
	}
	if resp["current_offer_progress"].(float64) != 3 {
		t.Fatalf("expected progress 3, got %v", resp["current_offer_progress"])
	}
}

func TestUpdateProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, token := seedTestUser(db, "update@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/auth/profile", map[string]string{"name": "Renamed"}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["name"] != "Renamed" {
		t.Fatal("name not updated")
	}
}

func TestChangePassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, token := seedTestUser(db, "chpass@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"old_password": "wrong",
		"new_password": "newpassword123",
	}, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong old password, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"old_password": "password123",
		"new_password": "newpassword123",
	}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// New password works for login.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "chpass@test.com",
		"password": "newpassword123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password failed: %d", w.Code)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	// Unknown emails still get a 200 to prevent enumeration.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/forgot-password", map[string]string{
		"email": "nobody@test.com",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestResetPasswordFlow(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	user, oldToken := seedTestUser(db, "reset@test.com", models.RoleCustomer)

	resetToken := models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     "test-reset-token",
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	db.Create(&resetToken)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/reset-password", map[string]string{
		"token":    "test-reset-token",
		"password": "brandnewpass123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The token is single-use.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/reset-password", map[string]string{
		"token":    "test-reset-token",
		"password": "anotherpass123",
	}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for reused token, got %d", w.Code)
	}

	// Existing sessions are invalidated by the reset.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, oldToken))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after reset, got %d", w.Code)
	}

	// And the new password logs in.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "reset@test.com",
		"password": "brandnewpass123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("login with reset password failed: %d", w.Code)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "refresh@test.com", models.RoleCustomer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "refresh@test.com",
		"password": "password123",
	}))
	refreshToken := parseResponse(w)["refresh_token"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["token"] == nil || resp["refresh_token"] == nil {
		t.Fatal("expected new token pair")
	}

	// The consumed refresh token is revoked.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for reused refresh token, got %d", w.Code)
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, customerToken := seedTestUser(db, "plain@test.com", models.RoleCustomer)
	_, adminToken := seedTestUser(db, "admin@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users", nil, customerToken))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["total"].(float64) != 2 {
		t.Fatalf("expected 2 users, got %v", resp["total"])
	}
}

func TestListUsersRoleFilter(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	seedTestUser(db, "c1@test.com", models.RoleCustomer)
	seedTestUser(db, "c2@test.com", models.RoleCustomer)
	_, adminToken := seedTestUser(db, "admin2@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users?role=customer", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if parseResponse(w)["total"].(float64) != 2 {
		t.Fatalf("expected 2 customers, got %v", parseResponse(w)["total"])
	}
}

func TestUpdateUserRole(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	target, _ := seedTestUser(db, "target@test.com", models.RoleCustomer)
	admin, adminToken := seedTestUser(db, "admin3@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+target.ID.String(),
		map[string]string{"role": models.RoleAdmin}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["role"] != models.RoleAdmin {
		t.Fatal("role not updated")
	}

	// Invalid role is rejected.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+target.ID.String(),
		map[string]string{"role": "emperor"}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %d", w.Code)
	}

	// Admins cannot change their own role.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+admin.ID.String(),
		map[string]string{"role": models.RoleCustomer}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self role change, got %d", w.Code)
	}
}

func TestUpdateUserBlock(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	target, targetToken := seedTestUser(db, "toblock@test.com", models.RoleCustomer)
	_, adminToken := seedTestUser(db, "admin4@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+target.ID.String(),
		map[string]bool{"is_blocked": true}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Blocked users are shut out immediately.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, targetToken))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked user, got %d", w.Code)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)
	_, adminToken := seedTestUser(db, "admin5@test.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users/"+uuid.New().String(), nil, adminToken))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
