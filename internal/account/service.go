package account

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ServiceInterface is the account workflow used by the HTTP layer
type ServiceInterface interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)
	SignOut(ctx context.Context, req SignOutRequest) error
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	provider SessionProvider
}

func NewService(provider SessionProvider) *Service {
	return &Service{provider: provider}
}

// SignUp validates the registration form and creates the account
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Nickname = strings.TrimSpace(req.Nickname)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateForm(req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	userID, err := s.provider.SignUp(ctx, SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Nickname: req.Nickname,
		Username: req.Username,
	})
	if err != nil {
		if !errors.Is(err, ErrAccountExists) {
			logger.WithContext(ctx).WithError(err).Error("Sign-up failed")
		}
		return nil, err
	}

	logger.WithContext(ctx).WithField("new_user_id", userID).Info("Account created")
	return &SignUpResponse{
		Success:  true,
		UserID:   userID,
		Message:  "Account created successfully",
		Strength: PasswordStrength(req.Password),
	}, nil
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateForm(req); err != nil {
		return nil, err
	}

	session, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			logger.WithContext(ctx).WithError(err).Error("Sign-in failed")
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) SignOut(ctx context.Context, req SignOutRequest) error {
	if err := validateForm(req); err != nil {
		return err
	}
	if err := s.provider.SignOut(ctx, req.RefreshToken); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("Sign-out failed")
		return err
	}
	return nil
}

// validateForm reports the first failing field in a readable form
func validateForm(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := fe.Field()
	label := strings.ReplaceAll(field, "_", " ")

	var msg string
	switch fe.Tag() {
	case "required":
		if field == "accept_terms" {
			msg = "You must accept the terms and conditions"
		} else {
			msg = label + " is required"
		}
	case "email":
		msg = "Please enter a valid email address"
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		msg = label + " is invalid"
	}
	return &ValidationError{Field: field, Message: msg}
}
