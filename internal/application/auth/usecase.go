package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/rbac"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
	"github.com/ladespensa/despensa-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y refresco de sesión.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, now: time.Now}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < 8 || !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Login verifica email/password y emite access token y refresh token.
// Email desconocido y password incorrecta devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	return uc.issue(user)
}

// Refresh valida el refresh token (cookie jwt-refresh) y emite un par nuevo.
// El usuario se relee para reflejar cambios de rol o desactivación.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := jwt.Parse(uc.jwtCfg.Secret, refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUnauthorized
	}
	return uc.issue(user)
}

// Me datos del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Permissions permisos efectivos del rol y la tabla completa.
func (uc *AuthUseCase) Permissions(role string) *dto.PermissionsResponse {
	return &dto.PermissionsResponse{
		Role:        role,
		Permissions: rbac.Expand(role),
		Table:       rbac.Table(),
	}
}

// EnsureAdmin crea el administrador inicial si el email no existe. Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: email, Password: password, Name: name, Role: entity.RoleAdmin})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		return false, nil
	}
	return err == nil, err
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.LoginResponse, error) {
	now := uc.now()
	access, err := uc.sign(user, jwt.TypeAccess, uc.jwtCfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := uc.sign(user, jwt.TypeRefresh, uc.jwtCfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:        access,
		ExpiresAt:    now.Add(uc.jwtCfg.AccessTTL),
		User:         dto.FromUser(user),
		RefreshToken: refresh,
		RefreshUntil: now.Add(uc.jwtCfg.RefreshTTL),
	}, nil
}

func (uc *AuthUseCase) sign(user *entity.User, typ string, ttl time.Duration) (string, error) {
	return jwt.Generate(jwt.Params{
		Secret: uc.jwtCfg.Secret,
		Issuer: uc.jwtCfg.Issuer,
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Type:   typ,
		TTL:    ttl,
	})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
