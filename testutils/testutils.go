package testutils

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/utils"
)

const TestJWTSecret = "test-secret"

// SetupTestDB returns a gorm handle backed by sqlmock and a cleanup func.
func SetupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sql mock: %s", err)
	}

	newLogger := logger.New(
		log.New(io.Discard, "", log.LstdFlags),
		logger.Config{
			LogLevel: logger.Silent,
		},
	)

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newLogger,
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %s", err)
	}

	cleanup := func() {
		sqlDB.Close()
	}

	return gormDB, mock, cleanup
}

func SetupTestRouter() *gin.Engine {
	r := gin.New()
	return r
}

func InitTestMain() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
	utils.Logger.SetOutput(io.Discard)
}

// JWT returns the token manager tests sign with.
func JWT() *utils.JWTManager {
	return utils.NewJWTManager(TestJWTSecret, time.Hour)
}

// Token signs a bearer token for user.
func Token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := JWT().Generate(user)
	if err != nil {
		t.Fatalf("failed to sign token: %s", err)
	}
	return token
}

// AsUser is a test middleware that sets the caller identity the way JWTAuth does.
func AsUser(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("wallet_address", user.WalletAddress)
		c.Next()
	}
}

// Do sends a request through r and returns the recorder.
func Do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
