package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/college-events/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{"host": cfg.Host, "dbname": cfg.DBName}).Info("Successfully connected to PostgreSQL")
	return db, nil
}

// Constraint names referenced by the repository error mapping.
const (
	ConstraintCollegeName        = "colleges_name_key"
	ConstraintStudentNumber      = "students_student_id_key"
	ConstraintStudentEmail       = "students_email_key"
	ConstraintStudentCollege     = "students_college_id_fkey"
	ConstraintEventCollege       = "events_college_id_fkey"
	ConstraintActiveRegistration = "uq_registrations_active_pair"
	ConstraintAttendancePair     = "attendances_pair_key"
	ConstraintFeedbackPair       = "feedbacks_pair_key"
	ConstraintUsername           = "users_username_key"
	ConstraintUserEmail          = "users_email_key"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS colleges (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		state VARCHAR(100) NOT NULL DEFAULT '',
		country VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT ` + ConstraintCollegeName + ` UNIQUE (name)
	)`,

	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		student_id VARCHAR(20) NOT NULL,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone_number VARCHAR(20) NOT NULL DEFAULT '',
		department VARCHAR(100) NOT NULL DEFAULT '',
		year_of_study INTEGER NOT NULL DEFAULT 1,
		college_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT ` + ConstraintStudentNumber + ` UNIQUE (student_id),
		CONSTRAINT ` + ConstraintStudentEmail + ` UNIQUE (email),
		CONSTRAINT ` + ConstraintStudentCollege + ` FOREIGN KEY (college_id) REFERENCES colleges(id)
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		event_date TIMESTAMP NOT NULL,
		location VARCHAR(200) NOT NULL DEFAULT '',
		max_capacity INTEGER NOT NULL CHECK (max_capacity > 0),
		event_type VARCHAR(50) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		college_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT ` + ConstraintEventCollege + ` FOREIGN KEY (college_id) REFERENCES colleges(id)
	)`,

	`CREATE TABLE IF NOT EXISTS registrations (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id),
		event_id UUID NOT NULL REFERENCES events(id),
		registration_date TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_confirmed BOOLEAN NOT NULL DEFAULT TRUE,
		cancelled_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS attendances (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id),
		event_id UUID NOT NULL REFERENCES events(id),
		is_present BOOLEAN NOT NULL,
		attendance_time TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT ` + ConstraintAttendancePair + ` UNIQUE (student_id, event_id)
	)`,

	`CREATE TABLE IF NOT EXISTS feedbacks (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id),
		event_id UUID NOT NULL REFERENCES events(id),
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL,
		feedback_date TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT ` + ConstraintFeedbackPair + ` UNIQUE (student_id, event_id)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(50) NOT NULL DEFAULT '',
		last_name VARCHAR(50) NOT NULL DEFAULT '',
		role VARCHAR(10) NOT NULL DEFAULT 'USER',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT ` + ConstraintUsername + ` UNIQUE (username),
		CONSTRAINT ` + ConstraintUserEmail + ` UNIQUE (email)
	)`,

	// Indexes
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + ConstraintActiveRegistration + `
		ON registrations(student_id, event_id) WHERE cancelled_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_event_id ON registrations(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_student_id ON registrations(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_attendances_event_id ON attendances(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feedbacks_event_id ON feedbacks(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_students_college_id ON students(college_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_college_id ON events(college_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_event_date ON events(event_date)`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
