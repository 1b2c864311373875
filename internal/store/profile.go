package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carelink/apiserver/internal/dbx"
	"github.com/carelink/apiserver/types"
	"github.com/google/uuid"
)

// ProfileRepository handles persistence for one role's profile records.
// Implementations exist per role and are resolved through ProfileRepositoryFor,
// which is the single place role-conditional dispatch happens.
type ProfileRepository interface {
	// Create inserts the profile for the given user using the fields
	// matching the repository's role.
	Create(ctx context.Context, user types.User, fields types.ProfileFields) (types.Profile, error)

	// GetByUser loads the profile owned by the given user. Returns
	// ErrNotFound when the row is absent.
	GetByUser(ctx context.Context, user types.User) (types.Profile, error)

	// List returns every profile of the repository's role joined with
	// its owning user, in insertion order.
	List(ctx context.Context) ([]types.Profile, error)
}

var profileRepositories = map[types.Role]func(dbx.Querier) ProfileRepository{
	types.RolePatient: func(db dbx.Querier) ProfileRepository { return &patientRepository{db: db} },
	types.RoleDoctor:  func(db dbx.Querier) ProfileRepository { return &doctorRepository{db: db} },
}

// ProfileRepositoryFor resolves the repository for the given role.
func ProfileRepositoryFor(role types.Role, db dbx.Querier) (ProfileRepository, error) {
	newRepo, ok := profileRepositories[role]
	if !ok {
		return nil, fmt.Errorf("no profile repository for role %q", role)
	}
	return newRepo(db), nil
}

type patientRepository struct {
	db dbx.Querier
}

func (r *patientRepository) Create(ctx context.Context, user types.User, fields types.ProfileFields) (types.Profile, error) {
	profile := types.PatientProfile{
		ID:                 uuid.NewString(),
		User:               user.Public(),
		FatherName:         fields.FatherName,
		AssignedDoctorID:   fields.AssignedDoctorID,
		IllnessDescription: fields.IllnessDescription,
	}

	const query = `
		INSERT INTO patients (id, user_id, father_name, assigned_doctor_id, illness_description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		user.ID,
		profile.FatherName,
		nullable(profile.AssignedDoctorID),
		profile.IllnessDescription,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *patientRepository) GetByUser(ctx context.Context, user types.User) (types.Profile, error) {
	const query = `
		SELECT id, father_name, assigned_doctor_id, illness_description
		FROM patients
		WHERE user_id = $1`

	profile := types.PatientProfile{User: user.Public()}
	var assignedDoctorID sql.NullString
	err := r.db.QueryRowContext(ctx, query, user.ID).Scan(
		&profile.ID,
		&profile.FatherName,
		&assignedDoctorID,
		&profile.IllnessDescription,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	profile.AssignedDoctorID = assignedDoctorID.String
	return profile, nil
}

func (r *patientRepository) List(ctx context.Context) ([]types.Profile, error) {
	const query = `
		SELECT p.id, p.father_name, p.assigned_doctor_id, p.illness_description,
			u.id, u.first_name, u.last_name, u.email, u.mobile, u.created_at
		FROM patients p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []types.Profile{}
	for rows.Next() {
		var profile types.PatientProfile
		var assignedDoctorID sql.NullString
		if err := rows.Scan(
			&profile.ID,
			&profile.FatherName,
			&assignedDoctorID,
			&profile.IllnessDescription,
			&profile.User.ID,
			&profile.User.FirstName,
			&profile.User.LastName,
			&profile.User.Email,
			&profile.User.Mobile,
			&profile.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		profile.AssignedDoctorID = assignedDoctorID.String
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

type doctorRepository struct {
	db dbx.Querier
}

func (r *doctorRepository) Create(ctx context.Context, user types.User, fields types.ProfileFields) (types.Profile, error) {
	profile := types.DoctorProfile{
		ID:             uuid.NewString(),
		User:           user.Public(),
		Specialization: fields.Specialization,
	}

	const query = `
		INSERT INTO doctors (id, user_id, specialization, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, profile.ID, user.ID, profile.Specialization, time.Now())
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *doctorRepository) GetByUser(ctx context.Context, user types.User) (types.Profile, error) {
	const query = `
		SELECT id, specialization
		FROM doctors
		WHERE user_id = $1`

	profile := types.DoctorProfile{User: user.Public()}
	err := r.db.QueryRowContext(ctx, query, user.ID).Scan(&profile.ID, &profile.Specialization)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]types.Profile, error) {
	const query = `
		SELECT d.id, d.specialization,
			u.id, u.first_name, u.last_name, u.email, u.mobile, u.created_at
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []types.Profile{}
	for rows.Next() {
		var profile types.DoctorProfile
		if err := rows.Scan(
			&profile.ID,
			&profile.Specialization,
			&profile.User.ID,
			&profile.User.FirstName,
			&profile.User.LastName,
			&profile.User.Email,
			&profile.User.Mobile,
			&profile.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
