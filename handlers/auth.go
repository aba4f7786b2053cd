package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskquest/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Use POST method", http.StatusMethodNotAllowed)
		return
	}
	if h.RateLimiter != nil && !h.RateLimiter.Allow(r.RemoteAddr) {
		sendError(w, "Too many register attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if !validateCredentials(input, w) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		sendError(w, "Cannot hash password", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.UserRepo.Create(r.Context(), user); err != nil {
		log.Printf("Error saving user %s: %v", user.Email, err)
		sendError(w, "Cannot save user", http.StatusInternalServerError)
		return
	}

	log.Printf("User registered: %s", user.Email)
	sendJSON(w, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	}, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Use POST method for login", http.StatusMethodNotAllowed)
		return
	}
	if h.RateLimiter != nil && !h.RateLimiter.Allow(r.RemoteAddr) {
		sendError(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if !validateCredentials(input, w) {
		return
	}

	user, err := h.UserRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	tokenString, err := h.generateToken(user.ID.String())
	if err != nil {
		log.Printf("Error generating token: %v", err)
		sendError(w, "Cannot create token", http.StatusInternalServerError)
		return
	}

	sendJSON(w, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"token":   tokenString,
	}, http.StatusOK)
}

func (h *Handler) generateToken(sub string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString(h.JWTSecret)
}

func validateCredentials(input credentials, w http.ResponseWriter) bool {
	if !emailRegex.MatchString(input.Email) {
		sendError(w, "Invalid email", http.StatusBadRequest)
		return false
	}
	if len(input.Password) < 4 {
		sendError(w, "Password must be at least 4 characters long", http.StatusBadRequest)
		return false
	}
	return true
}
