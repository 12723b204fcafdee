package security

import (
	"AuthSessionService/internal/model"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims набор утверждений access и refresh токенов.
// Профиль и RefreshJTI заполняются только у access токенов.
type Claims struct {
	Type        model.TokenType `json:"type"`
	UserUUID    uuid.UUID       `json:"user_uuid"`
	RefreshJTI  string          `json:"refresh_jti,omitempty"`
	Username    string          `json:"username,omitempty"`
	Email       string          `json:"email,omitempty"`
	IsSuperuser bool            `json:"is_superuser,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	jwt.RegisteredClaims
}

var supportedAlgorithms = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// TokenCodec подписывает и проверяет токены. Без состояния, безопасен для конкурентного использования.
type TokenCodec struct {
	secretKey  []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(secretKey string, algorithm string, accessTTL time.Duration, refreshTTL time.Duration) (*TokenCodec, error) {
	if secretKey == "" {
		return nil, errors.New("пустой секретный ключ")
	}
	method, ok := supportedAlgorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("неподдерживаемый алгоритм подписи: %s", algorithm)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("время жизни токенов должно быть положительным")
	}

	return &TokenCodec{
		secretKey:  []byte(secretKey),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock возвращает копию кодека с другим источником времени
func (codec *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *codec
	clone.now = now
	return &clone
}

func (codec *TokenCodec) AccessTTL() time.Duration {
	return codec.accessTTL
}

func (codec *TokenCodec) NewRefreshClaims(userUUID uuid.UUID, refreshJTI string, issuedAt time.Time) *Claims {
	return &Claims{
		Type:             model.RefreshToken,
		UserUUID:         userUUID,
		RegisteredClaims: codec.registeredClaims(refreshJTI, issuedAt, codec.refreshTTL),
	}
}

func (codec *TokenCodec) NewAccessClaims(profile model.UserProfile, refreshJTI string, issuedAt time.Time) *Claims {
	return &Claims{
		Type:             model.AccessToken,
		UserUUID:         profile.UUID,
		RefreshJTI:       refreshJTI,
		Username:         profile.Username,
		Email:            profile.Email,
		IsSuperuser:      profile.IsSuperuser,
		CreatedAt:        profile.CreatedAt.UTC().Format(time.RFC3339),
		RegisteredClaims: codec.registeredClaims(uuid.NewString(), issuedAt, codec.accessTTL),
	}
}

func (codec *TokenCodec) registeredClaims(jti string, issuedAt time.Time, ttl time.Duration) jwt.RegisteredClaims {
	issuedAt = issuedAt.Truncate(time.Second)
	return jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
}

// Encode подписывает набор утверждений
func (codec *TokenCodec) Encode(claims *Claims) (string, error) {
	if err := checkClaims(claims); err != nil {
		return "", err
	}

	jwtToken := jwt.NewWithClaims(codec.method, claims)
	token, err := jwtToken.SignedString(codec.secretKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return token, nil
}

// Decode проверяет подпись и временные утверждения. Блок-лист здесь не проверяется.
func (codec *TokenCodec) Decode(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{codec.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(codec.now),
		// без строгого base64 неиспользуемые биты последнего символа подписи игнорируются
		jwt.WithStrictDecoding(),
	)

	claims := &Claims{}
	jwtToken, err := parser.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return codec.secretKey, nil
	})
	if err != nil || !jwtToken.Valid {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	if err := checkClaims(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}

	return claims, nil
}

func checkClaims(claims *Claims) error {
	if claims == nil {
		return errors.New("пустой набор утверждений")
	}
	if !claims.Type.Valid() {
		return fmt.Errorf("неизвестный тип токена: %q", claims.Type)
	}
	if claims.UserUUID == uuid.Nil {
		return errors.New("не указан user_uuid")
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return fmt.Errorf("невалидный jti: %w", err)
	}
	if claims.IssuedAt == nil || claims.NotBefore == nil || claims.ExpiresAt == nil {
		return errors.New("не заданы временные утверждения")
	}
	if claims.NotBefore.Before(claims.IssuedAt.Time) || !claims.ExpiresAt.After(claims.NotBefore.Time) {
		return errors.New("нарушен порядок iat <= nbf < exp")
	}
	if claims.Type == model.AccessToken && claims.RefreshJTI == "" {
		return errors.New("access токен без refresh_jti")
	}
	return nil
}
