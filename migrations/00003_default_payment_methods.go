package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upDefaultPaymentMethods, downDefaultPaymentMethods)
}

type seedMethod struct {
	name, description, kind, accountName string
	order                                int
}

var defaultPaymentMethods = []seedMethod{
	{"Cash", "Pay in cash at the front desk", "cash", "", 1},
	{"Bank Transfer", "Transfer to our bank account", "bank_transfer", "Room Booking System", 2},
	{"Credit Card", "Pay by card at check-in", "credit_card", "", 3},
}

func upDefaultPaymentMethods(tx *sql.Tx) error {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM payment_methods").Scan(&count); err != nil {
		return fmt.Errorf("failed to count payment methods: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := bind(`
		INSERT INTO payment_methods (name, description, type, account_name, is_active, display_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	for _, m := range defaultPaymentMethods {
		if _, err := tx.Exec(query, m.name, m.description, m.kind, m.accountName, true, m.order); err != nil {
			return fmt.Errorf("failed to insert payment method %s: %w", m.name, err)
		}
	}
	return nil
}

func downDefaultPaymentMethods(tx *sql.Tx) error {
	for _, m := range defaultPaymentMethods {
		if _, err := tx.Exec(bind("DELETE FROM payment_methods WHERE name = ? AND type = ?"), m.name, m.kind); err != nil {
			return err
		}
	}
	return nil
}
