package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/david/tender-radar/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidCreds = errors.New("invalid credentials")

	jwtSecretOnce    sync.Once
	jwtSecretRuntime []byte
	jwtSecretErr     error
)

// jwtSecretFromEnv resolves the signing secret once per process. Without
// JWT_SECRET a random secret is generated, so issued tokens die with the
// process.
func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		if secret := strings.TrimSpace(os.Getenv("JWT_SECRET")); secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("generate fallback JWT secret: %w", err)
			return
		}
		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Print("JWT_SECRET not set, signing tokens with an ephemeral secret")
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}
	return jwtSecretRuntime, nil
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Signup registers a new account and returns it with a fresh token.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user User
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, created_at
	`, req.Email, string(hash)).Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := generateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.QueryRow(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = $1", req.Email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCreds
	}

	token, err := generateToken(user.ID)
	if err != nil {
		return nil, err
	}

	// Never hand the hash back out.
	user.PasswordHash = ""
	return &AuthResponse{Token: token, User: user}, nil
}

// generateToken signs a 24-hour HS256 token whose subject is the user ID.
func generateToken(userID uuid.UUID) (string, error) {
	secret, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Saved Notices

func (s *Service) SaveNotice(ctx context.Context, userID uuid.UUID, noticeID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO saved_notices (user_id, notice_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, notice_id) DO NOTHING
	`, userID, noticeID)
	return err
}

func (s *Service) UnsaveNotice(ctx context.Context, userID uuid.UUID, noticeID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM saved_notices
		WHERE user_id = $1 AND notice_id = $2
	`, userID, noticeID)
	return err
}

func (s *Service) GetSavedNotices(ctx context.Context, userID uuid.UUID) ([]models.Notice, error) {
	rows, err := s.db.Query(ctx, `
		SELECT n.notice_id, n.title, n.notice_type, n.buyer_name, n.procurement_method,
		       n.publish_date, n.pdf_url, n.extraction_status, n.last_extracted_at, n.created_at
		FROM notices_stage n
		JOIN saved_notices sn ON n.notice_id = sn.notice_id
		WHERE sn.user_id = $1
		ORDER BY sn.saved_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []models.Notice
	for rows.Next() {
		var n models.Notice
		err := rows.Scan(
			&n.NoticeID, &n.Title, &n.NoticeType, &n.BuyerName, &n.ProcurementMethod,
			&n.PublishDate, &n.PDFURL, &n.ExtractionStatus, &n.LastExtractedAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
