package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/utils"
)

// Open connects to PostgreSQL and migrates every table the store uses.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         utils.GetGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		utils.LogError(err, "Error connecting to the database")
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		utils.LogError(err, "Error migrating database")
		return nil, err
	}

	utils.LogSuccess("Database connection successful")
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Content{},
		&models.Purchase{},
		&models.Tip{},
		&models.Wallet{},
		&models.Deposit{},
		&models.Withdrawal{},
		&models.StreamSession{},
		&models.Violation{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Bookmark{},
		&models.Follow{},
		&models.Message{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
