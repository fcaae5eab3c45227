package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/auth"
	"github.com/sseth345/srilanka-learning-platform/internal/config"
	"github.com/sseth345/srilanka-learning-platform/internal/database"
	"github.com/sseth345/srilanka-learning-platform/internal/handler"
	"github.com/sseth345/srilanka-learning-platform/internal/middleware"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/pkg/cloudinary"
)

var (
	mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}
	pdfHeader = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
)

type testActor struct {
	id   uint
	role string
}

var (
	teacherActor = &testActor{id: 1, role: models.RoleTeacher}
	studentActor = &testActor{id: 2, role: models.RoleStudent}
	otherStudent = &testActor{id: 3, role: models.RoleStudent}
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

type fakeFileStorage struct {
	mu      sync.Mutex
	uploads []string
}

func (f *fakeFileStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name)
	return "https://files.example.com/" + name, nil
}

type fakeVideoStorage struct {
	mu        sync.Mutex
	counter   int
	destroyed []string
}

func (f *fakeVideoStorage) UploadVideo(_ context.Context, _ string, reader io.Reader) (cloudinary.Asset, error) {
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		return cloudinary.Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	return cloudinary.Asset{
		PublicID:  fmt.Sprintf("learning-platform/videos/lesson-%d", f.counter),
		SecureURL: "https://media.example.com/video.mp4",
		Format:    "mp4",
		Bytes:     n,
	}, nil
}

func (f *fakeVideoStorage) DestroyVideo(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func (f *fakeVideoStorage) StreamURL(publicID string) string {
	return cloudinary.VideoURL("demo", publicID)
}

func (f *fakeVideoStorage) ThumbnailURL(publicID string) string {
	return cloudinary.ThumbnailURL("demo", publicID)
}

type testEnv struct {
	db     *gorm.DB
	app    *fiber.App
	files  *fakeFileStorage
	videos *fakeVideoStorage
}

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// stubAuth stands in for token verification: the caller identity comes from test headers.
func stubAuth(c *fiber.Ctx) error {
	if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
		c.Locals("user_id", uint(id))
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupHandlerDB(t)
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	files := &fakeFileStorage{}
	videos := &fakeVideoStorage{}

	userRepo := repository.NewUserRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	submissionRepo := repository.NewExerciseSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, auth.NewTokenManager("handler-secret", 0), validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger, false)})
	app.Use(middleware.CorrelationID())

	api := app.Group("/api")
	api.Get("/health", handler.HealthCheck(config.Config{AppName: "test", AppEnv: "test"}))

	authHandler := handler.NewAuthHandler(authService, userService, logger)
	authHandler.Register(api.Group("/auth"))
	authHandler.RegisterProtected(api.Group("/auth", stubAuth))

	handler.NewUserHandler(userService, logger).Register(api.Group("/users", stubAuth))
	handler.NewExerciseHandler(
		service.NewExerciseService(exerciseRepo, submissionRepo, validate, logger),
		service.NewExerciseSubmissionService(exerciseRepo, submissionRepo, nil, validate, logger),
		logger,
	).Register(api.Group("/exercises", stubAuth))
	handler.NewContentHandler(
		service.NewContentService(repository.NewContentRepository(db), files, 5, validate, logger),
		logger,
	).Register(api.Group("/content", stubAuth))
	handler.NewBookHandler(
		service.NewBookService(repository.NewBookRepository(db), files, 5, validate, logger),
		logger,
	).Register(api.Group("/books", stubAuth))
	handler.NewVideoHandler(
		service.NewVideoService(repository.NewVideoRepository(db), videos, nil, service.VideoConfig{MaxSizeMB: 5}, validate, logger),
		logger,
	).Register(api.Group("/videos", stubAuth))

	discussions := handler.NewDiscussionHandler(service.NewDiscussionService(repository.NewDiscussionRepository(db), validate, logger), logger)
	discussions.Register(api.Group("/discussions", stubAuth))
	discussions.RegisterComments(api.Group("/comments", stubAuth))

	handler.NewNewsHandler(service.NewNewsService(repository.NewNewsRepository(db), validate, logger), logger).
		Register(api.Group("/news", stubAuth))
	handler.NewAnalyticsHandler(
		service.NewAnalyticsService(repository.NewAnalyticsRepository(db), submissionRepo, nil, 0, logger),
		logger,
	).Register(api.Group("/analytics", stubAuth))

	return &testEnv{db: db, app: app, files: files, videos: videos}
}

func (e *testEnv) do(t *testing.T, method, path string, actor *testActor, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.send(t, req, actor)
}

func (e *testEnv) upload(t *testing.T, path string, actor *testActor, fields map[string]string, fileField, fileName string, content []byte) (*http.Response, envelope) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return e.send(t, req, actor)
}

func (e *testEnv) send(t *testing.T, req *http.Request, actor *testActor) (*http.Response, envelope) {
	t.Helper()

	if actor != nil {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(actor.id), 10))
		req.Header.Set("X-Test-Role", actor.role)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var payload envelope
	decodeResponse(t, resp, &payload)
	return resp, payload
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func decodeData(t *testing.T, payload envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}

func seedUser(t *testing.T, db *gorm.DB, actor *testActor, name string) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{
		ID:           actor.id,
		Name:         name,
		Email:        fmt.Sprintf("user%d@example.lk", actor.id),
		PasswordHash: "not-a-real-hash",
		Role:         actor.role,
	}).Error)
}

func jsonUnmarshal(raw json.RawMessage, target interface{}) error {
	return json.Unmarshal(raw, target)
}

func newRawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}
