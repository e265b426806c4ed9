package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aniket-manhas-git/aasra-sewa/internal/auth"
	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
)

// Registration is a validated sign-up request.
type Registration struct {
	FullName     string
	Email        string
	Password     string
	Phone        string
	Age          int
	BloodGroup   string
	Address      string
	AadhaarImage string
	Gender       string
	Face         string
}

type UserService struct {
	users  UserStore
	tokens *auth.Manager
	now    func() time.Time
}

func NewUserService(users UserStore, tokens *auth.Manager) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

func (s *UserService) Register(ctx context.Context, r Registration) (*model.User, error) {
	email := strings.TrimSpace(r.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, invalid("Email already registered")
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	usr := &model.User{
		FullName:     strings.TrimSpace(r.FullName),
		Email:        email,
		Phone:        r.Phone,
		Age:          r.Age,
		BloodGroup:   r.BloodGroup,
		Address:      strings.TrimSpace(r.Address),
		AadhaarImage: r.AadhaarImage,
		Gender:       r.Gender,
		Face:         r.Face,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := usr.SetPassword(r.Password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, usr); err != nil {
		// lost a race against a concurrent sign-up with the same email
		if errors.Is(err, model.ErrDuplicate) {
			return nil, invalid("Email already registered")
		}
		return nil, err
	}
	return usr, nil
}

// Login checks the credentials and returns the user with a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", invalid("Email and password are required")
	}
	usr, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrNotFound) {
		return nil, "", invalid("User does not exist, please register first")
	}
	if err != nil {
		return nil, "", err
	}
	if !usr.CheckPassword(password) {
		return nil, "", unauthorized("Invalid email or password")
	}
	token, err := s.tokens.IssueUserToken(usr.ID.Hex(), usr.Email)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	id, err := parseID(userID, "Invalid user ID")
	if err != nil {
		return nil, err
	}
	usr, err := s.users.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("User not found")
	}
	return usr, err
}

func (s *UserService) Update(ctx context.Context, userID string, uu model.UserUpdate) (*model.User, error) {
	usr, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	uu.Apply(usr)
	usr.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, usr); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return usr, nil
}
