package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/model"
)

// ErrRoomProvider wraps failures of the video room provider API.
var ErrRoomProvider = errors.New("room provider request failed")

// VideoGrant describes what a room token allows, mirroring the grant shape
// the room provider expects inside the JWT.
type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// RoomClaims is the signed payload of a room access credential.
type RoomClaims struct {
	jwt.RegisteredClaims
	Video VideoGrant     `json:"video"`
	Role  model.RoomRole `json:"role"`
}

// RoomService mints room access credentials and tears rooms down through the
// provider API. Issued credentials are registered in Redis with the token's
// TTL so a room teardown can account for them.
type RoomService struct {
	cfg        *config.Config
	rdb        *redis.Client
	httpClient *http.Client
	log        zerolog.Logger
}

// NewRoomService creates a new RoomService. rdb may be nil (e.g. in the
// mint-token CLI); session registration is then skipped.
func NewRoomService(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *RoomService {
	return &RoomService{
		cfg:        cfg,
		rdb:        rdb,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "room_service").Logger(),
	}
}

// IssueToken mints a signed room access credential for one identity.
// Teachers can publish and subscribe; students subscribe and publish their
// own media but carry the student role for downstream authorization.
func (s *RoomService) IssueToken(ctx context.Context, roomName, identity string, role model.RoomRole) (*model.RoomTokenResponse, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrMissingField, role)
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.RoomTokenTTL)
	jti := uuid.New().String()

	claims := RoomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.cfg.VideoAPIKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Video: VideoGrant{
			Room:         roomName,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.VideoAPISecret))
	if err != nil {
		return nil, fmt.Errorf("sign room token: %w", err)
	}

	if s.rdb != nil {
		key := config.CacheKey.RoomSessionKey(roomName, identity)
		if err := s.rdb.Set(ctx, key, jti, s.cfg.RoomTokenTTL).Err(); err != nil {
			return nil, fmt.Errorf("register room session: %w", err)
		}
	}

	s.log.Info().
		Str("room", roomName).
		Str("identity", identity).
		Str("role", string(role)).
		Time("expires_at", expiresAt).
		Msg("Room token issued")

	return &model.RoomTokenResponse{
		Token:     signed,
		RoomName:  roomName,
		Identity:  identity,
		Role:      role,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses and validates a room credential, returning its claims.
func (s *RoomService) ValidateToken(tokenStr string) (*RoomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RoomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.VideoAPISecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*RoomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// DeleteRoom tears a room down at the provider and clears its registered
// sessions. Session cleanup is best-effort once the provider has confirmed.
func (s *RoomService) DeleteRoom(ctx context.Context, roomName string) error {
	endpoint := fmt.Sprintf("%s/rooms/%s", s.cfg.VideoAPIURL, url.PathEscape(roomName))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRoomProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.VideoAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoomProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: status %d", ErrRoomProvider, resp.StatusCode)
	}

	s.clearRoomSessions(ctx, roomName)

	s.log.Info().Str("room", roomName).Msg("Room deleted")
	return nil
}

// clearRoomSessions removes every registered session key for a room.
func (s *RoomService) clearRoomSessions(ctx context.Context, roomName string) {
	if s.rdb == nil {
		return
	}

	iter := s.rdb.Scan(ctx, 0, config.CacheKey.RoomSessionPattern(roomName), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", iter.Val()).Msg("Session key cleanup failed")
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Str("room", roomName).Msg("Session scan failed")
	}
}
