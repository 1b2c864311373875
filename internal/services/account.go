package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/carelink/apiserver/internal/dbx"
	"github.com/carelink/apiserver/internal/store"
	"github.com/carelink/apiserver/internal/token"
	"github.com/carelink/apiserver/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the flat registration payload. Role-specific fields
// arrive alongside the identity fields and only the ones matching
// user_type are consulted.
type RegisterInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	UserType        string `json:"user_type"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`

	types.ProfileFields
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountService implements the credential-to-session pipeline:
// validate input, create or authenticate the user, resolve the
// role-specific profile, and mint the token pair.
type AccountService struct {
	db     *sql.DB
	tokens *token.Service
	log    *logrus.Logger
}

func NewAccountService(db *sql.DB, tokens *token.Service, log *logrus.Logger) *AccountService {
	return &AccountService{db: db, tokens: tokens, log: log}
}

// Register validates the input, creates the user and its role profile in
// one transaction, and issues a token pair. Validation reports every
// failing field, including email uniqueness, in a single error.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (types.Profile, token.Pair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validateRegistration(ctx, in); err != nil {
		return nil, token.Pair{}, err
	}
	role := types.Role(in.UserType)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, token.Pair{}, err
	}

	user := types.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		Mobile:       strings.TrimSpace(in.Mobile),
		Role:         role,
		PasswordHash: string(hash),
	}

	var profile types.Profile
	err = dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.Querier) error {
		created, err := store.NewUserRepository(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		profiles, err := store.ProfileRepositoryFor(role, tx)
		if err != nil {
			return err
		}
		profile, err = profiles.Create(ctx, user, in.ProfileFields)
		if err != nil {
			s.log.WithError(err).WithField("role", role).Error("profile creation failed, rolling back registration")
			return &ProfileNotCreatedError{Role: role}
		}
		return nil
	})
	if err != nil {
		// A concurrent registration can beat the uniqueness pre-check;
		// the insert's constraint violation gets the same field error.
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, token.Pair{}, &ValidationError{Fields: FieldErrors{"email": {msgEmailTaken}}}
		}
		return nil, token.Pair{}, err
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, token.Pair{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("account registered")
	return profile, pair, nil
}

// Login authenticates the credentials, resolves the role profile, and
// issues a token pair. Unknown email and wrong password produce the same
// error so account existence is not disclosed.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (types.Profile, token.Pair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	fields := FieldErrors{}
	if requireField(fields, "email", in.Email) && !isValidEmail(in.Email) {
		fields.add("email", msgInvalidEmail)
	}
	if in.Password == "" {
		fields.add("password", msgRequired)
	}
	if len(fields) > 0 {
		return nil, token.Pair{}, &ValidationError{Fields: fields}
	}

	user, err := store.NewUserRepository(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, token.Pair{}, ErrInvalidCredentials
		}
		return nil, token.Pair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, token.Pair{}, ErrInvalidCredentials
	}

	profile, err := s.profileFor(ctx, user)
	if err != nil {
		return nil, token.Pair{}, err
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, token.Pair{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("login succeeded")
	return profile, pair, nil
}

// Refresh verifies a refresh token and mints a fresh pair for its user.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return token.Pair{}, ErrInvalidRefreshToken
	}

	user, err := store.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return token.Pair{}, ErrInvalidRefreshToken
		}
		return token.Pair{}, err
	}

	return s.tokens.Issue(user)
}

// ProfileByUserID resolves the role profile for an authenticated user.
func (s *AccountService) ProfileByUserID(ctx context.Context, userID string) (types.Profile, error) {
	user, err := store.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profileFor(ctx, user)
}

// ListDoctors returns every doctor profile in insertion order.
func (s *AccountService) ListDoctors(ctx context.Context) ([]types.Profile, error) {
	profiles, err := store.ProfileRepositoryFor(types.RoleDoctor, s.db)
	if err != nil {
		return nil, err
	}
	return profiles.List(ctx)
}

func (s *AccountService) profileFor(ctx context.Context, user types.User) (types.Profile, error) {
	profiles, err := store.ProfileRepositoryFor(user.Role, s.db)
	if err != nil {
		return nil, err
	}
	profile, err := profiles.GetByUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Error("role profile missing for existing user")
			return nil, &ProfileNotFoundError{Role: user.Role}
		}
		return nil, err
	}
	return profile, nil
}

func (s *AccountService) validateRegistration(ctx context.Context, in RegisterInput) error {
	fields := FieldErrors{}

	requireField(fields, "first_name", in.FirstName)
	requireField(fields, "last_name", in.LastName)
	requireField(fields, "mobile", in.Mobile)

	if requireField(fields, "email", in.Email) {
		if !isValidEmail(in.Email) {
			fields.add("email", msgInvalidEmail)
		} else if err := s.checkEmailFree(ctx, in.Email, fields); err != nil {
			return err
		}
	}

	if in.Password == "" {
		fields.add("password", msgRequired)
	} else {
		for _, message := range validatePassword(in.Password) {
			fields.add("password", message)
		}
	}
	if in.ConfirmPassword != in.Password {
		fields.add("confirm_password", msgPasswordNoMatch)
	}

	role := types.Role(in.UserType)
	switch {
	case strings.TrimSpace(in.UserType) == "":
		fields.add("user_type", msgRequired)
	case !role.Valid():
		fields.add("user_type", `"`+in.UserType+`" `+msgInvalidRole)
	case role == types.RolePatient:
		requireField(fields, "father_name", in.FatherName)
		requireField(fields, "illness_description", in.IllnessDescription)
	case role == types.RoleDoctor:
		requireField(fields, "specialization", in.Specialization)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// checkEmailFree mirrors the uniqueness validation the original API ran
// during input validation so the duplicate-email error appears together
// with the other field errors. The insert still races under the unique
// index; Register maps that violation to the same field error.
func (s *AccountService) checkEmailFree(ctx context.Context, email string, fields FieldErrors) error {
	_, err := store.NewUserRepository(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		fields.add("email", msgEmailTaken)
		return nil
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return err
	}
}
