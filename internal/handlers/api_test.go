package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	sent []notify.Message
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func setupAPI(t *testing.T) (*gin.Engine, *fakeNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	tokens := auth.NewTokenService("test-secret", "portfolio-backend", "portfolio-app", 15*time.Minute, 168*time.Hour)
	notifier := &fakeNotifier{}
	handlers.Init(tokens, notifier, handlers.Options{
		CookieSecure:  false,
		PublicBaseURL: "http://localhost:3000",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    168 * time.Hour,
	})

	cfg := &config.Config{SessionSecret: "test-session-secret"}
	router := server.NewRouter(cfg, &auth.FirstPartyProvider{Tokens: tokens})
	return router, notifier
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["access_token"].(string)
}

func createPortfolio(t *testing.T, router *gin.Engine, token, name string) uint {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/portfolios", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	portfolio := decode(t, w)["portfolio"].(map[string]interface{})
	return uint(portfolio["ID"].(float64))
}

// Сквозной сценарий: владелец → лимиты → приглашение редактора → границы
// его прав → каскадное удаление портфеля.
func TestOwnerCollaboratorLifecycle(t *testing.T) {
	router, notifier := setupAPI(t)

	tokenA := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, tokenA, "Alice")

	// до лимита платформы — 6 web-проектов
	var lastProjectID uint
	for i := 0; i < models.DefaultMaxWebProjects; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/projects", tokenA, gin.H{
			"portfolio_id": portfolioID,
			"title":        fmt.Sprintf("web project %d", i),
			"platform":     "web",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		lastProjectID = uint(decode(t, w)["project"].(map[string]interface{})["ID"].(float64))
	}

	// седьмой — 409
	w := doJSON(t, router, http.MethodPost, "/api/projects", tokenA, gin.H{
		"portfolio_id": portfolioID,
		"title":        "one too many",
		"platform":     "web",
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// приглашаем Боба редактором
	w = doJSON(t, router, http.MethodPost, "/api/invite", tokenA, gin.H{
		"email": "bob@example.com",
		"role":  "EDITOR",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "bob@example.com", notifier.sent[0].To)

	// Боб регистрируется поверх заглушки и работает с чужим портфелем
	tokenB := registerUser(t, router, "bob@example.com")

	w = doJSON(t, router, http.MethodPost, "/api/projects", tokenB, gin.H{
		"portfolio_id": portfolioID,
		"title":        "design project",
		"platform":     "design",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/projects/%d", lastProjectID), tokenB, gin.H{
		"title": "renamed by bob",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// но удалить портфель может только владелец
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/portfolios/%d", portfolioID), tokenB, nil)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/portfolios/%d", portfolioID), tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// каскад: грантов и проектов не осталось
	var grants, projects int64
	require.NoError(t, database.DB.Model(&models.PortfolioRole{}).Count(&grants).Error)
	require.NoError(t, database.DB.Model(&models.Project{}).Count(&projects).Error)
	require.Zero(t, grants)
	require.Zero(t, projects)
}

func TestRegisterValidationListsAllProblems(t *testing.T) {
	router, _ := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].([]interface{})
	require.Len(t, details, 2)
}

func TestRegisterDuplicateEmailIsCaseInsensitive(t *testing.T) {
	router, _ := setupAPI(t)
	registerUser(t, router, "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"email":    "Alice@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFailures(t *testing.T) {
	router, _ := setupAPI(t)
	registerUser(t, router, "alice@example.com")

	// неверный пароль и неизвестный email дают одинаковое сообщение
	w := doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	msgWrong := decode(t, w)["error"].(string)

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, msgWrong, decode(t, w)["error"].(string))

	// деактивированный аккаунт не входит даже с верным паролем
	require.NoError(t, database.DB.Model(&models.User{}).
		Where("email = ?", "alice@example.com").
		Update("is_active", false).Error)

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	router, _ := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode(t, w)
	oldRefresh := first["refresh_token"].(string)

	w = doJSON(t, router, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": oldRefresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode(t, w)
	require.NotEqual(t, oldRefresh, rotated["refresh_token"].(string))

	// свежая пара рабочая
	w = doJSON(t, router, http.MethodGet, "/api/me", rotated["access_token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// access-токен в роли refresh не принимается
	w = doJSON(t, router, http.MethodPost, "/auth/refresh", "", gin.H{
		"refresh_token": rotated["access_token"].(string),
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	router, _ := setupAPI(t)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/auth/logout", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestUnauthenticatedAPIRequestsAreRejected(t *testing.T) {
	router, _ := setupAPI(t)

	w := doJSON(t, router, http.MethodGet, "/api/portfolios", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/portfolios", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMissingResourceReturns404BeforePermissions(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/projects/9999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/portfolios/9999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewerCannotWrite(t *testing.T) {
	router, _ := setupAPI(t)

	tokenA := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, tokenA, "Alice")

	w := doJSON(t, router, http.MethodPost, "/api/invite", tokenA, gin.H{
		"email": "viewer@example.com", "role": "VIEWER",
	})
	require.Equal(t, http.StatusOK, w.Code)

	tokenV := registerUser(t, router, "viewer@example.com")

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/portfolios/%d", portfolioID), tokenV, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/projects", tokenV, gin.H{
		"portfolio_id": portfolioID, "title": "nope", "platform": "web",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectValidationListsAllMissingFields(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/projects", token, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].([]interface{})
	require.Len(t, details, 3)
}

func TestBulkTagCreationReportsPartialSuccess(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")
	createPortfolio(t, router, token, "Alice")

	for _, tag := range []string{"frontend", "backend"} {
		w := doJSON(t, router, http.MethodPost, "/api/tech-tags", token, gin.H{"tag": tag})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/api/tech-tags/bulk", token, gin.H{
		"tags": []string{"frontend", "backend", "fullstack", "mobile", "devops"},
	})
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())
	out := decode(t, w)
	require.EqualValues(t, 3, out["created"])
	require.EqualValues(t, 2, out["failed"])
}

func TestReferencedTagCannotBeDeleted(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, token, "Alice")

	w := doJSON(t, router, http.MethodPost, "/api/tech-tags", token, gin.H{"tag": "frontend"})
	require.Equal(t, http.StatusCreated, w.Code)
	tagID := uint(decode(t, w)["tech_tag"].(map[string]interface{})["ID"].(float64))

	w = doJSON(t, router, http.MethodPost, "/api/projects", token, gin.H{
		"portfolio_id": portfolioID,
		"title":        "tagged project",
		"platform":     "web",
		"tag_ids":      []uint{tagID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := uint(decode(t, w)["project"].(map[string]interface{})["ID"].(float64))

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/tech-tags/%d", tagID), token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.TechTag{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// после удаления проекта тег освобождается
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/projects/%d", projectID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/tech-tags/%d", tagID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestReferencedOptionCannotBeDeleted(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, token, "Alice")

	w := doJSON(t, router, http.MethodPost, "/api/tech-options", token, gin.H{
		"name": "React", "category": "frontend",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	optionID := uint(decode(t, w)["tech_option"].(map[string]interface{})["ID"].(float64))

	w = doJSON(t, router, http.MethodPost, "/api/projects", token, gin.H{
		"portfolio_id": portfolioID,
		"title":        "uses react",
		"platform":     "web",
		"tools":        []string{"React", "Vite"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/tech-options/%d", optionID), token, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	require.EqualValues(t, 1, details["referencing_projects"])
}

func TestVocabularyReadsArePublic(t *testing.T) {
	router, _ := setupAPI(t)

	w := doJSON(t, router, http.MethodGet, "/api/tech-tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/tech-options", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestVocabularyWritesNeedEditorRights(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "nobody@example.com") // без портфеля и грантов

	w := doJSON(t, router, http.MethodPost, "/api/tech-tags", token, gin.H{"tag": "frontend"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSecondPortfolioForSameOwnerIsConflict(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")
	createPortfolio(t, router, token, "Alice")

	w := doJSON(t, router, http.MethodPost, "/api/portfolios", token, gin.H{"name": "Second"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLimitConfigManagement(t *testing.T) {
	router, _ := setupAPI(t)
	tokenOwner := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, tokenOwner, "Alice")
	tokenOther := registerUser(t, router, "other@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/config", tokenOther, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/config", tokenOwner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode(t, w)["config"].(map[string]interface{})
	require.EqualValues(t, models.DefaultMaxWebProjects, cfg["max_web_projects"])

	w = doJSON(t, router, http.MethodPut, "/api/config", tokenOwner, gin.H{"max_web_projects": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/projects", tokenOwner, gin.H{
		"portfolio_id": portfolioID, "title": "first", "platform": "web",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/projects", tokenOwner, gin.H{
		"portfolio_id": portfolioID, "title": "second", "platform": "web",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, token, "Alice")

	w := doJSON(t, router, http.MethodPost, "/api/projects", token, gin.H{
		"portfolio_id": portfolioID,
		"title":        "original",
		"platform":     "web",
		"description":  "original description",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := uint(decode(t, w)["project"].(map[string]interface{})["ID"].(float64))

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/projects/%d", projectID), token, gin.H{
		"title": "renamed",
	})
	require.Equal(t, http.StatusOK, w.Code)
	project := decode(t, w)["project"].(map[string]interface{})
	require.Equal(t, "renamed", project["title"])
	require.Equal(t, "original description", project["description"])
}

func TestArchiveProjectCRUD(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "alice@example.com")
	portfolioID := createPortfolio(t, router, token, "Alice")

	w := doJSON(t, router, http.MethodPost, "/api/archive-projects", token, gin.H{
		"portfolio_id": portfolioID,
		"title":        "old experiment",
		"year":         "2021",
		"build":        []string{"Go", "HTMX"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	archiveID := uint(decode(t, w)["archive_project"].(map[string]interface{})["ID"].(float64))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/archive-projects?portfolio_id=%d", portfolioID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["archive_projects"].([]interface{})
	require.Len(t, list, 1)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/archive-projects/%d", archiveID), token, gin.H{
		"year": "2020",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2020", decode(t, w)["archive_project"].(map[string]interface{})["year"])

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/archive-projects/%d", archiveID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	router, notifier := setupAPI(t)
	registerUser(t, router, "alice@example.com")

	w := doJSON(t, router, http.MethodPost, "/auth/password-reset/request", "", gin.H{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.sent, 1)
	require.Equal(t, notify.KindPasswordReset, notifier.sent[0].Kind)

	// адреса без аккаунта получают тот же ответ и ни одного письма
	w = doJSON(t, router, http.MethodPost, "/auth/password-reset/request", "", gin.H{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.sent, 1)

	resetToken := strings.TrimPrefix(notifier.sent[0].Data["reset_url"],
		"http://localhost:3000/reset-password?token=")
	w = doJSON(t, router, http.MethodPost, "/auth/password-reset/confirm", "", gin.H{
		"token":    resetToken,
		"password": "brand-new-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "brand-new-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
}
