package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/carelink/apiserver/internal/store"
	"github.com/carelink/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepositoryFor(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, role := range types.Roles {
		repo, err := store.ProfileRepositoryFor(role, db)
		require.NoError(t, err)
		assert.NotNil(t, repo)
	}

	_, err = store.ProfileRepositoryFor(types.Role("admin"), db)
	assert.Error(t, err)
}

func TestDoctorRepositoryList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo, err := store.ProfileRepositoryFor(types.RoleDoctor, db)
	require.NoError(t, err)

	columns := []string{
		"id", "specialization",
		"id", "first_name", "last_name", "email", "mobile", "created_at",
	}

	t.Run("insertion order preserved", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM doctors d").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("doc-1", "Cardiology", "user-1", "Amy", "Wong", "amy@example.com", "555-0101", now).
				AddRow("doc-2", "Neurology", "user-2", "Bob", "Lee", "bob@example.com", "555-0102", now))

		profiles, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, profiles, 2)

		first, ok := profiles[0].(types.DoctorProfile)
		require.True(t, ok)
		assert.Equal(t, "doc-1", first.ID)
		assert.Equal(t, "Cardiology", first.Specialization)
		assert.Equal(t, "amy@example.com", first.User.Email)
	})

	t.Run("empty directory is an empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM doctors d").
			WillReturnRows(sqlmock.NewRows(columns))

		profiles, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, profiles)
		assert.Empty(t, profiles)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryGetByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo, err := store.ProfileRepositoryFor(types.RolePatient, db)
	require.NoError(t, err)

	user := types.User{ID: "user-1", FirstName: "Jane", Email: "jane@example.com", Role: types.RolePatient}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM patients").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "father_name", "assigned_doctor_id", "illness_description"}).
				AddRow("pat-1", "John Doe", nil, "Migraine"))

		profile, err := repo.GetByUser(context.Background(), user)
		require.NoError(t, err)

		patient, ok := profile.(types.PatientProfile)
		require.True(t, ok)
		assert.Equal(t, "pat-1", patient.ID)
		assert.Empty(t, patient.AssignedDoctorID)
		assert.Equal(t, "jane@example.com", patient.User.Email)
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM patients").
			WithArgs("user-1").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUser(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
