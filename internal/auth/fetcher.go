package auth

import (
	"context"

	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
)

// SessionInfo resolves signed session cookies for the session middleware.
type SessionInfo struct {
	Service *Service
	Cookies *CookieCodec
}

func (si SessionInfo) FindSessionByID(ctx context.Context, cookieValue string) (utils.SessionData, error) {
	id, err := si.Cookies.Decode(cookieValue)
	if err != nil {
		return utils.SessionData{}, err
	}

	session, err := si.Service.ResolveSession(ctx, id)
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
