package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"
	"lendbridge/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newUploadApp builds a fiber app with the upload route authenticated
// as userID, storing files under a per-test directory.
func newUploadApp(t *testing.T, db *gorm.DB, userID string) (*fiber.App, string) {
	t.Helper()

	docRepo := repositories.NewDocumentRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	handler := NewDocumentHandler(services.NewDocumentService(docRepo, appRepo))
	handler.uploadDir = t.TempDir()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/applications/:id/documents", handler.Upload)

	return app, handler.uploadDir
}

func seedUploadApplication(t *testing.T, db *gorm.DB, userID string) *models.LoanApplication {
	t.Helper()

	application := &models.LoanApplication{
		UserID:          userID,
		ReferenceNumber: "CRD2026UPLOAD1",
		LoanType:        "personal",
		RequestedAmount: 120000,
		MonthlyIncome:   45000,
		CurrentStep:     1,
		Status:          domain.ApplicationUnderReview,
	}
	if err := db.Create(application).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return application
}

func uploadRequest(t *testing.T, target string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("document_type", "id_proof"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := writer.CreateFormFile("file", "passport.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("test document body")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	return len(entries)
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	db := openTestDB(t)
	application := seedUploadApplication(t, db, "owner")
	app, dir := newUploadApp(t, db, "owner")

	resp, err := app.Test(uploadRequest(t, "/applications/"+application.ID+"/documents"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	if got := countFiles(t, dir); got != 1 {
		t.Errorf("stored %d files, want 1", got)
	}

	var count int64
	db.Model(&models.LoanDocument{}).Count(&count)
	if count != 1 {
		t.Errorf("document rows = %d, want 1", count)
	}
}

func TestUploadForeignApplicationLeavesNoFile(t *testing.T) {
	db := openTestDB(t)
	application := seedUploadApplication(t, db, "owner")
	app, dir := newUploadApp(t, db, "stranger")

	resp, err := app.Test(uploadRequest(t, "/applications/"+application.ID+"/documents"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	// The rejected upload must not leave an orphaned file behind
	if got := countFiles(t, dir); got != 0 {
		t.Errorf("stored %d files after a rejected upload, want 0", got)
	}

	var count int64
	db.Model(&models.LoanDocument{}).Count(&count)
	if count != 0 {
		t.Errorf("document rows = %d, want 0", count)
	}
}

func TestUploadUnknownApplicationLeavesNoFile(t *testing.T) {
	db := openTestDB(t)
	app, dir := newUploadApp(t, db, "owner")

	resp, err := app.Test(uploadRequest(t, "/applications/missing/documents"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	if got := countFiles(t, dir); got != 0 {
		t.Errorf("stored %d files after a rejected upload, want 0", got)
	}
}
