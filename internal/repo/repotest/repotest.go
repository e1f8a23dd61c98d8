// Package repotest opens a throwaway SQLite database with the portal schema
// for store and service tests.
package repotest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

// Open returns a migrated client on a private SQLite database file under the
// test's temp dir. Transactions take the write lock at BEGIN so concurrent
// tests see busy waits instead of lock upgrade failures.
func Open(t testing.TB) *repo.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "portal.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate&_time_format=sqlite", path)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(8)

	client := repo.NewClient(entsql.OpenDB(dialect.SQLite, db))
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, migrate.Create(context.Background(), client.Driver()))
	return client
}

// Patient inserts a patient with the given email.
func Patient(t testing.TB, c *repo.Client, email string) *repo.Patient {
	t.Helper()
	p, err := c.Patients.Create(context.Background(), repo.CreatePatient{
		Email:       email,
		DisplayName: "Test Patient",
	})
	require.NoError(t, err)
	return p
}

// Exam inserts an exam for patientID.
func Exam(t testing.TB, c *repo.Client, patientID uuid.UUID) *repo.Exam {
	t.Helper()
	e, err := c.Exams.Create(context.Background(), repo.CreateExam{
		PatientID: patientID,
		Title:     "Blood panel",
		FileKey:   "exams/" + patientID.String() + "/" + uuid.NewString() + ".pdf",
	})
	require.NoError(t, err)
	return e
}
