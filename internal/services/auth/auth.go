package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/lib/jwt"
	"masonry_grid/internal/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEditorNotFound     = errors.New("editor not found")
)

type Auth struct {
	log            *slog.Logger
	editorProvider EditorProvider
	secret         string
	tokenTTL       time.Duration
}

type EditorProvider interface {
	Editor(ctx context.Context, email string) (models.Editor, error)
}

func New(log *slog.Logger, editorProvider EditorProvider, secret string, tokenTTL time.Duration) *Auth {
	return &Auth{
		log:            log,
		editorProvider: editorProvider,
		secret:         secret,
		tokenTTL:       tokenTTL,
	}
}

// Login checks the editor password and issues a token.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login editor")

	editor, err := a.editorProvider.Editor(ctx, email)
	if err != nil {
		if errors.Is(err, ErrEditorNotFound) {
			log.Warn("editor not found", sl.Err(err))

			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get editor", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(editor.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := jwt.NewToken(editor, a.secret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("editor logged in successfully")

	return token, nil
}

// StaticEditor serves the single editor account from configuration.
type StaticEditor struct {
	editor models.Editor
}

func NewStaticEditor(email, passwordHash string) *StaticEditor {
	return &StaticEditor{editor: models.Editor{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: []byte(passwordHash),
	}}
}

func (s *StaticEditor) Editor(_ context.Context, email string) (models.Editor, error) {
	if s.editor.Email == "" || strings.ToLower(strings.TrimSpace(email)) != s.editor.Email {
		return models.Editor{}, ErrEditorNotFound
	}
	return s.editor, nil
}
