package migrations

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminEmail    = "admin@roombooking.com"
	defaultAdminPassword = "Admin@123"
)

func init() {
	goose.AddMigration(upCreateDefaultAdmin, downCreateDefaultAdmin)
}

func adminEmail() string {
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		return v
	}
	return defaultAdminEmail
}

func upCreateDefaultAdmin(tx *sql.Tx) error {
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = defaultAdminPassword
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query := bind(`
		INSERT INTO users (email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES (?, ?, 'System', 'Administrator', 'admin', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`)
	if _, err := tx.Exec(query, adminEmail(), string(hashed), true); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

func downCreateDefaultAdmin(tx *sql.Tx) error {
	_, err := tx.Exec(bind("DELETE FROM users WHERE email = ? AND role = 'admin'"), adminEmail())
	if err != nil {
		return fmt.Errorf("failed to delete admin user: %w", err)
	}
	return nil
}
