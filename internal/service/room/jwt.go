package room

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	memberIdKey = "member_id"
	roomIdKey   = "room_id"
)

type Claims struct {
	MemberId string
	RoomId   string
}

func (s service) generateJWT(memberId, roomId string) (string, error) {
	claims := jwt.MapClaims{
		memberIdKey: memberId,
		roomIdKey:   roomId,
		"iat":       s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

func (s service) parseJWT(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	memberId, ok := claims[memberIdKey].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	roomId, ok := claims[roomIdKey].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Claims{
		MemberId: memberId,
		RoomId:   roomId,
	}, nil
}
