package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ticketTTL is how long a WebSocket ticket is valid.
	ticketTTL = 60 * time.Second

	// ticketAudience marks a JWT as a WebSocket ticket.
	ticketAudience = "hearth-ws"
)

var errTicketUsed = errors.New("ticket already used")

// ticketLedger remembers redeemed ticket IDs until they expire, so each
// ticket opens exactly one connection.
type ticketLedger struct {
	mu   sync.Mutex
	used map[string]time.Time
}

func newTicketLedger() *ticketLedger {
	return &ticketLedger{used: make(map[string]time.Time)}
}

// redeem marks id as used. It fails for an id already redeemed.
func (l *ticketLedger) redeem(id string, expires, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, exp := range l.used {
		if now.After(exp) {
			delete(l.used, k)
		}
	}
	if _, ok := l.used[id]; ok {
		return errTicketUsed
	}
	l.used[id] = expires
	return nil
}

// issueTicket signs a short-lived HS256 ticket with the API token.
func (s *Server) issueTicket(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{ticketAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ticketTTL)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Token))
	if err != nil {
		return "", fmt.Errorf("signing ticket: %w", err)
	}
	return signed, nil
}

// redeemTicket checks the signature, audience and expiry of a ticket and
// consumes it.
func (s *Server) redeemTicket(ticket string, now time.Time) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(ticket, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(s.cfg.Token), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ticketAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return errors.New("ticket has no id")
	}
	return s.tickets.redeem(claims.ID, claims.ExpiresAt.Time, now)
}

// handleWSTicket issues a single-use ticket for the WebSocket upgrade, so
// the API token never appears in a URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Token == "" {
		writeNotFound(w, "authentication is disabled")
		return
	}
	ticket, err := s.issueTicket(time.Now())
	if err != nil {
		s.logger.Error("issuing websocket ticket", "error", err)
		writeInternalError(w, "failed to issue ticket")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}
