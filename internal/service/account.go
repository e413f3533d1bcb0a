package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/beverage-reservation/internal/model"
	"github.com/iliyamo/beverage-reservation/internal/utils"
)

const dateLayout = "2006-01-02"

type AccountStore interface {
	MemberExists(ctx context.Context, email, phone string) (bool, error)
	CreateMember(ctx context.Context, m *model.Member) error
	GetMemberByEmail(ctx context.Context, email string) (model.Member, error)
}

type AccountService struct {
	store AccountStore
	cost  int
}

// NewAccountService hashes passwords with the given bcrypt cost; an
// out-of-range cost falls back to bcrypt.DefaultCost.
func NewAccountService(store AccountStore, cost int) *AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{store: store, cost: cost}
}

type SignupInput struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Gender    string `json:"gender"`
	Birthday  string `json:"birthday"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 30)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 30)),
		validation.Field(&in.Gender, validation.Required, validation.Length(1, 10)),
		validation.Field(&in.Birthday, validation.Required, validation.Date(dateLayout)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 50), is.Email),
		validation.Field(&in.Phone, validation.Required, validation.Length(10, 10), is.Digit),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
	)
}

// normalize trims the fields and cuts ISO timestamps down to their
// date part, the way browsers often send birthdays.
func (in SignupInput) normalize() SignupInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Birthday = strings.TrimSpace(in.Birthday)
	if len(in.Birthday) > len(dateLayout) {
		in.Birthday = in.Birthday[:len(dateLayout)]
	}
	return in
}

// Signup registers a member.  Email and phone must both be unused; the
// unique keys on the table back the pre-check so two concurrent signups
// with the same email cannot both succeed.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (model.Member, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return model.Member{}, invalid(err)
	}
	birthday, err := time.ParseInLocation(dateLayout, in.Birthday, time.UTC)
	if err != nil {
		return model.Member{}, invalid(fmt.Errorf("birthday: %w", err))
	}

	exists, err := s.store.MemberExists(ctx, in.Email, in.Phone)
	if err != nil {
		return model.Member{}, storeErr("s.store.MemberExists", err)
	}
	if exists {
		return model.Member{}, ErrDuplicateAccount
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return model.Member{}, fmt.Errorf("utils.HashPassword -> %w", err)
	}
	m := model.Member{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Gender:       in.Gender,
		Birthday:     birthday,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		StartDate:    time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := s.store.CreateMember(ctx, &m); err != nil {
		return model.Member{}, storeErr("s.store.CreateMember", err)
	}
	return m, nil
}

// Login checks a credential pair.  Every failure, whether the email is
// unknown or the password wrong, is reported as ErrInvalidCredentials
// after the same amount of bcrypt work.
func (s *AccountService) Login(ctx context.Context, email, password string) (model.Member, error) {
	m, err := s.store.GetMemberByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		utils.BurnCompare(password, s.cost)
		return model.Member{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Member{}, storeErr("s.store.GetMemberByEmail", err)
	}
	if !utils.VerifyPassword(m.PasswordHash, password) {
		return model.Member{}, ErrInvalidCredentials
	}
	return m, nil
}
