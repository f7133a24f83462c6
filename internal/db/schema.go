package db

import (
	"context"
	"database/sql"
	"fmt"
)

var tables = []struct {
	name string
	ddl  string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	is_verified TINYINT(1) NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"buses", `
CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_number VARCHAR(50) NOT NULL,
	bus_name VARCHAR(255) NOT NULL,
	operator VARCHAR(255) NOT NULL,
	route_from VARCHAR(255) NOT NULL,
	route_to VARCHAR(255) NOT NULL,
	departure_time VARCHAR(20) NOT NULL,
	arrival_time VARCHAR(20) NOT NULL,
	travel_date DATETIME NOT NULL,
	total_seats INT NOT NULL DEFAULT 40,
	available_seats INT NOT NULL DEFAULT 40,
	fare DECIMAL(12,2) NOT NULL,
	bus_type VARCHAR(20) NOT NULL DEFAULT 'Non-AC',
	amenities VARCHAR(255) NOT NULL DEFAULT '',
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_bus_number (bus_number),
	CONSTRAINT chk_available CHECK (available_seats >= 0 AND available_seats <= total_seats)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_code VARCHAR(40) NOT NULL,
	user_id BIGINT NOT NULL,
	bus_id BIGINT NOT NULL,
	total_amount DECIMAL(12,2) NOT NULL,
	payment_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
	payment_method VARCHAR(30) NOT NULL,
	booking_status VARCHAR(20) NOT NULL DEFAULT 'Confirmed',
	contact_number VARCHAR(50) NOT NULL,
	email VARCHAR(255) NOT NULL,
	booking_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	travel_date DATETIME NOT NULL,
	UNIQUE KEY uniq_booking_code (booking_code),
	KEY idx_user (user_id),
	KEY idx_bus (bus_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"booking_passengers", `
CREATE TABLE IF NOT EXISTS booking_passengers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	position INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	age INT NOT NULL,
	gender VARCHAR(10) NOT NULL,
	seat_number INT NOT NULL,
	KEY idx_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

const searchIndex = "idx_route_date"

// EnsureSchema creates missing tables and the route search index.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range tables {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	if !HasIndex(ctx, conn, "buses", searchIndex) {
		if _, err := conn.ExecContext(ctx, `CREATE INDEX `+searchIndex+` ON buses (route_from, route_to, travel_date)`); err != nil {
			return fmt.Errorf("create index %s: %w", searchIndex, err)
		}
	}
	return nil
}
