package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/catalog-service/internal/apperr"
	"go.uber.org/zap"
)

type fakeCodeStore struct {
	codes map[string]string // purpose + "\x00" + subject -> code
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: map[string]string{}}
}

func (s *fakeCodeStore) key(purpose, subject string) string {
	return purpose + "\x00" + subject
}

func (s *fakeCodeStore) Issue(_ context.Context, purpose, subject string) (string, error) {
	code := "123456"
	s.codes[s.key(purpose, subject)] = code
	return code, nil
}

func (s *fakeCodeStore) Verify(_ context.Context, purpose, subject, code string) error {
	stored, ok := s.codes[s.key(purpose, subject)]
	if !ok {
		return fmt.Errorf("verification code expired or not issued: %w", apperr.ErrNotFound)
	}
	if stored != code {
		return fmt.Errorf("verification code mismatch: %w", apperr.ErrValidation)
	}
	delete(s.codes, s.key(purpose, subject))
	return nil
}

func (s *fakeCodeStore) Invalidate(_ context.Context, purpose, subject string) error {
	delete(s.codes, s.key(purpose, subject))
	return nil
}

func verificationApp(store CodeStore) *fiber.App {
	app := fiber.New()
	SetupRoutes(app, &Handlers{
		Products:     NewProductHandler(nil, zap.NewNop()),
		Categories:   NewCategoryHandler(nil, zap.NewNop()),
		Import:       NewImportHandler(nil, "", zap.NewNop()),
		Verification: NewVerificationHandler(store, zap.NewNop()),
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body, vendorID string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if vendorID != "" {
		req.Header.Set("X-Vendor-ID", vendorID)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestVerificationIssueAndVerify(t *testing.T) {
	store := newFakeCodeStore()
	app := verificationApp(store)

	status, body := postJSON(t, app, "/api/v1/verification/codes",
		`{"purpose":"vendor-email","identifier":"shop@example.com"}`, "vendor-1")
	require.Equal(t, fiber.StatusCreated, status)
	code := body["data"].(map[string]any)["code"].(string)
	require.NotEmpty(t, code)

	status, body = postJSON(t, app, "/api/v1/verification/verify",
		`{"purpose":"vendor-email","identifier":"shop@example.com","code":"`+code+`"}`, "vendor-1")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["verified"])

	// The code is consumed by a successful verify.
	status, _ = postJSON(t, app, "/api/v1/verification/verify",
		`{"purpose":"vendor-email","identifier":"shop@example.com","code":"`+code+`"}`, "vendor-1")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestVerificationWrongCode(t *testing.T) {
	store := newFakeCodeStore()
	app := verificationApp(store)

	status, _ := postJSON(t, app, "/api/v1/verification/codes",
		`{"purpose":"vendor-email","identifier":"shop@example.com"}`, "vendor-1")
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = postJSON(t, app, "/api/v1/verification/verify",
		`{"purpose":"vendor-email","identifier":"shop@example.com","code":"000000"}`, "vendor-1")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestVerificationRequiresVendorIdentity(t *testing.T) {
	app := verificationApp(newFakeCodeStore())

	status, _ := postJSON(t, app, "/api/v1/verification/codes",
		`{"purpose":"vendor-email","identifier":"shop@example.com"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestVerificationValidatesInput(t *testing.T) {
	app := verificationApp(newFakeCodeStore())

	status, _ := postJSON(t, app, "/api/v1/verification/codes",
		`{"purpose":"vendor-email"}`, "vendor-1")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
